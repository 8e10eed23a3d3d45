package dmx

func Clamp(x float64) float64 {
	if x < 0 || x != x {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func Lerp(x, a, b float64) float64 {
	return a + (b-a)*x
}

// Byte maps [0, 1] onto 0..255, truncating.
func Byte(x float64) byte {
	return byte(Clamp(x) * 255)
}

// LerpByte maps [0, 1] onto lo..hi, truncating.
func LerpByte(x float64, lo, hi byte) byte {
	return byte(Lerp(Clamp(x), float64(lo), float64(hi)))
}
