// Package streamdeck drives the key displays of an Elgato Stream Deck over
// USB HID.
package streamdeck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"rafaelmartins.com/p/usbhid"
)

const elgatoVendorID = 0x0fd9

var ErrNoDevice = errors.New("streamdeck: no device found")

type Model struct {
	Name     string
	Keys     int
	KeyRows  int
	KeyCols  int
	KeySize  int
	FlipKeys bool
}

var ModelMK2 = Model{
	Name:     "MK.2",
	Keys:     15,
	KeyRows:  3,
	KeyCols:  5,
	KeySize:  72,
	FlipKeys: true,
}

var ModelXL = Model{
	Name:     "XL",
	Keys:     32,
	KeyRows:  4,
	KeyCols:  8,
	KeySize:  96,
	FlipKeys: true,
}

var ModelPlus = Model{
	Name:    "Plus",
	Keys:    8,
	KeyRows: 2,
	KeyCols: 4,
	KeySize: 120,
}

var productModels = map[uint16]*Model{
	0x006d: &ModelMK2,
	0x0080: &ModelMK2,
	0x006c: &ModelXL,
	0x008f: &ModelXL,
	0x0084: &ModelPlus,
}

type Device struct {
	dev   *usbhid.Device
	model *Model
}

// Open opens the first supported Stream Deck. It returns ErrNoDevice when
// none is attached.
func Open() (*Device, error) {
	devices, err := usbhid.Enumerate(func(dev *usbhid.Device) bool {
		return dev.VendorId() == elgatoVendorID && productModels[dev.ProductId()] != nil
	})
	if err != nil {
		return nil, fmt.Errorf("streamdeck: enumerate: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	dev := devices[0]
	if err := dev.Open(true); err != nil {
		return nil, fmt.Errorf("streamdeck: open: %w", err)
	}
	return &Device{dev: dev, model: productModels[dev.ProductId()]}, nil
}

func (d *Device) Model() *Model        { return d.model }
func (d *Device) Close() error         { return d.dev.Close() }
func (d *Device) SerialNumber() string { return d.dev.SerialNumber() }
func (d *Device) Product() string      { return d.dev.Product() }

func (d *Device) SetBrightness(perc byte) error {
	pl := make([]byte, d.dev.GetFeatureReportLength())
	pl[0] = 0x08
	pl[1] = min(perc, 100)
	return d.dev.SetFeatureReport(3, pl)
}

// Reset shows the Elgato logo and clears every key.
func (d *Device) Reset() error {
	pl := make([]byte, d.dev.GetFeatureReportLength())
	pl[0] = 0x02
	return d.dev.SetFeatureReport(3, pl)
}

func (d *Device) SetKeyColor(key int, c color.Color) error {
	sz := d.model.KeySize
	img := image.NewRGBA(image.Rect(0, 0, sz, sz))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, xdraw.Src)
	return d.SetKeyImage(key, img)
}

func (d *Device) SetKeyImage(key int, img image.Image) error {
	if key < 0 || key >= d.model.Keys {
		return fmt.Errorf("streamdeck: invalid key %d", key)
	}
	data, err := encodeKey(d.model, img)
	if err != nil {
		return err
	}
	return d.sendKeyImage(byte(key), data)
}

func (d *Device) ClearAllKeys() error {
	for i := range d.model.Keys {
		if err := d.SetKeyColor(i, color.Black); err != nil {
			return err
		}
	}
	return nil
}

// encodeKey scales img to the model's key size, rotates it for models
// mounted upside down, and encodes it as JPEG.
func encodeKey(m *Model, img image.Image) ([]byte, error) {
	sz := m.KeySize
	scaled := image.NewRGBA(image.Rect(0, 0, sz, sz))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	var src image.Image = scaled
	if m.FlipKeys {
		flipped := image.NewRGBA(scaled.Bounds())
		for y := range sz {
			for x := range sz {
				flipped.Set(sz-1-x, sz-1-y, scaled.At(x, y))
			}
		}
		src = flipped
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("streamdeck: encode key: %w", err)
	}
	return buf.Bytes(), nil
}

const keyHeaderSize = 8

// keyReports splits an encoded image into output reports of reportLen
// bytes, each with an 8 byte page header.
func keyReports(key byte, data []byte, reportLen int) [][]byte {
	payloadLen := reportLen - keyHeaderSize
	var reports [][]byte
	for page, start := 0, 0; start < len(data); page++ {
		end := min(start+payloadLen, len(data))
		last := byte(0)
		if end == len(data) {
			last = 1
		}
		chunk := data[start:end]
		r := make([]byte, reportLen)
		copy(r, []byte{
			0x02,
			0x07,
			key,
			last,
			byte(len(chunk)),
			byte(len(chunk) >> 8),
			byte(page),
			byte(page >> 8),
		})
		copy(r[keyHeaderSize:], chunk)
		reports = append(reports, r)
		start = end
	}
	return reports
}

func (d *Device) sendKeyImage(key byte, data []byte) error {
	for _, r := range keyReports(key, data, int(d.dev.GetOutputReportLength())) {
		if err := d.dev.SetOutputReport(2, r); err != nil {
			return fmt.Errorf("streamdeck: key %d: %w", key, err)
		}
	}
	return nil
}
