package osc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrShort = errors.New("osc: message too short")

// Message is a single OSC message. Args hold int32, float32, string,
// []byte, int64, float64, bool or nil.
type Message struct {
	Addr string
	Args []any
}

func NewMessage(addr string, args ...any) Message {
	return Message{Addr: addr, Args: args}
}

func (m Message) String() string {
	return fmt.Sprintf("%s %v", m.Addr, m.Args)
}

// Float returns argument i as a float64, accepting any numeric type.
func (m Message) Float(i int) (float64, bool) {
	if i >= len(m.Args) {
		return 0, false
	}
	switch v := m.Args[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns argument i if it is an integer.
func (m Message) Int(i int) (int64, bool) {
	if i >= len(m.Args) {
		return 0, false
	}
	switch v := m.Args[i].(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func pad(n int) int {
	return (4 - n%4) % 4
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for range pad(len(s) + 1) {
		buf = append(buf, 0)
	}
	return buf
}

// Encode serializes m. Float64 arguments are sent as float32 since few
// clients accept the 'd' tag; use Double to force 64-bit.
func (m Message) Encode() []byte {
	buf := appendString(nil, m.Addr)

	typetag := ","
	for _, arg := range m.Args {
		switch v := arg.(type) {
		case int32, int:
			typetag += "i"
		case float32, float64:
			typetag += "f"
		case Double:
			typetag += "d"
		case string:
			typetag += "s"
		case []byte:
			typetag += "b"
		case int64:
			typetag += "h"
		case bool:
			if v {
				typetag += "T"
			} else {
				typetag += "F"
			}
		case nil:
			typetag += "N"
		}
	}
	buf = appendString(buf, typetag)

	for _, arg := range m.Args {
		switch v := arg.(type) {
		case int32:
			buf = binary.BigEndian.AppendUint32(buf, uint32(v))
		case int:
			buf = binary.BigEndian.AppendUint32(buf, uint32(int32(v)))
		case float32:
			buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
		case float64:
			buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(float32(v)))
		case Double:
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(float64(v)))
		case string:
			buf = appendString(buf, v)
		case []byte:
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
			buf = append(buf, v...)
			for range pad(len(v)) {
				buf = append(buf, 0)
			}
		case int64:
			buf = binary.BigEndian.AppendUint64(buf, uint64(v))
		}
	}

	return buf
}

// Double marks a float64 argument to be sent with the 'd' tag.
type Double float64

func readString(data []byte, pos int) (string, int, error) {
	end := pos
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", 0, fmt.Errorf("osc: unterminated string")
	}
	return string(data[pos:end]), end + 1 + pad(end-pos+1), nil
}

// Decode parses a single message.
func Decode(data []byte) (Message, error) {
	if len(data) < 4 {
		return Message{}, ErrShort
	}
	if data[0] != '/' {
		return Message{}, fmt.Errorf("osc: bad address %q", data[:min(len(data), 16)])
	}

	addr, pos, err := readString(data, 0)
	if err != nil {
		return Message{}, err
	}
	msg := Message{Addr: addr}

	if pos >= len(data) || data[pos] != ',' {
		return msg, nil
	}

	typetag, pos, err := readString(data, pos)
	if err != nil {
		return msg, err
	}

	for _, t := range typetag[1:] {
		switch t {
		case 'i':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated int32")
			}
			msg.Args = append(msg.Args, int32(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 'f':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated float32")
			}
			msg.Args = append(msg.Args, math.Float32frombits(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 's':
			var s string
			s, pos, err = readString(data, pos)
			if err != nil {
				return msg, err
			}
			msg.Args = append(msg.Args, s)
		case 'b':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated blob size")
			}
			size := int(binary.BigEndian.Uint32(data[pos:]))
			pos += 4
			if size < 0 || pos+size > len(data) {
				return msg, fmt.Errorf("osc: truncated blob")
			}
			b := make([]byte, size)
			copy(b, data[pos:pos+size])
			msg.Args = append(msg.Args, b)
			pos += size + pad(size)
		case 'h':
			if pos+8 > len(data) {
				return msg, fmt.Errorf("osc: truncated int64")
			}
			msg.Args = append(msg.Args, int64(binary.BigEndian.Uint64(data[pos:])))
			pos += 8
		case 'd':
			if pos+8 > len(data) {
				return msg, fmt.Errorf("osc: truncated float64")
			}
			msg.Args = append(msg.Args, math.Float64frombits(binary.BigEndian.Uint64(data[pos:])))
			pos += 8
		case 'T':
			msg.Args = append(msg.Args, true)
		case 'F':
			msg.Args = append(msg.Args, false)
		case 'N':
			msg.Args = append(msg.Args, nil)
		default:
			return msg, fmt.Errorf("osc: unsupported type tag %q", t)
		}
	}

	return msg, nil
}

const bundleTag = "#bundle"

// DecodePacket parses a message or a (possibly nested) bundle. Bundle time
// tags are ignored; contained messages are returned in order.
func DecodePacket(data []byte) ([]Message, error) {
	if len(data) >= 8 && string(data[:7]) == bundleTag && data[7] == 0 {
		return decodeBundle(data)
	}
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return []Message{msg}, nil
}

func decodeBundle(data []byte) ([]Message, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("osc: truncated bundle header")
	}
	var out []Message
	pos := 16
	for pos < len(data) {
		if pos+4 > len(data) {
			return out, fmt.Errorf("osc: truncated bundle element size")
		}
		size := int(binary.BigEndian.Uint32(data[pos:]))
		pos += 4
		if size < 0 || pos+size > len(data) {
			return out, fmt.Errorf("osc: truncated bundle element")
		}
		msgs, err := DecodePacket(data[pos : pos+size])
		if err != nil {
			return out, err
		}
		out = append(out, msgs...)
		pos += size
	}
	return out, nil
}

// EncodeBundle wraps messages in a bundle with the "immediately" time tag.
func EncodeBundle(msgs ...Message) []byte {
	buf := appendString(nil, bundleTag)
	buf = binary.BigEndian.AppendUint64(buf, 1)
	for _, m := range msgs {
		b := m.Encode()
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
		buf = append(buf, b...)
	}
	return buf
}
