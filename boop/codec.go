package boop

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Wire tag bytes. These are the observed on-the-wire constants and must
// never change independently of the protocol itself.
const (
	tagTiny      = 0
	tagString    = 2
	tagArray     = 3
	tagBoolFalse = 4
	tagError     = 6
	tagSmall     = 8
	tagMedium    = 16
	tagLarge     = 32
	tagFloatS    = 48
	tagFloatL    = 56
	tagBoolTrue  = 132
)

// maxLen is the largest representable length for a String, Error message,
// or Array: lengths are encoded as an unsigned 16-bit integer.
const maxLen = 1<<16 - 1

// MaxDepth bounds Array recursion during decode. Nothing in the wire
// format itself limits nesting depth, so the decoder enforces one to
// avoid exhausting the goroutine stack on adversarial input.
const MaxDepth = 128

// DefaultBufferCapacity matches the connection layer's conventional
// initial read-buffer size (~1 KiB), growable as bytes.Buffer demands.
const DefaultBufferCapacity = 1024

// Buffer is the resumable FIFO byte queue that Encode appends to and
// Decode consumes from. It embeds bytes.Buffer, whose Bytes/Next pair
// already gives exactly the peek-then-commit semantics a resumable
// decoder needs: Bytes returns the unread tail without consuming it, and
// Next only advances the read position once the caller is sure it wants
// to keep what it parsed.
type Buffer struct {
	bytes.Buffer
}

// NewBuffer returns an empty Buffer pre-grown to DefaultBufferCapacity.
func NewBuffer() *Buffer {
	buf := &Buffer{}
	buf.Grow(DefaultBufferCapacity)
	return buf
}

// Encode appends the wire encoding of v to buf. It is total for any
// representable Value; it only fails when a String, Error message, or
// Array exceeds the 16-bit length limit, or when v is not one of this
// package's Value types.
func Encode(buf *Buffer, v Value) error {
	switch val := v.(type) {
	case Tiny:
		buf.WriteByte(tagTiny)
		buf.WriteByte(byte(val))
	case Small:
		buf.WriteByte(tagSmall)
		putUint16(buf, uint16(val))
	case Medium:
		buf.WriteByte(tagMedium)
		putUint32(buf, uint32(val))
	case Large:
		buf.WriteByte(tagLarge)
		putUint64(buf, uint64(val))
	case FloatS:
		buf.WriteByte(tagFloatS)
		putUint32(buf, math.Float32bits(float32(val)))
	case FloatL:
		buf.WriteByte(tagFloatL)
		putUint64(buf, math.Float64bits(float64(val)))
	case Bool:
		if val {
			buf.WriteByte(tagBoolTrue)
		} else {
			buf.WriteByte(tagBoolFalse)
		}
	case String:
		if len(val) > maxLen {
			return ErrLengthOverflow
		}
		buf.WriteByte(tagString)
		putUint16(buf, uint16(len(val)))
		buf.Write(val)
	case Error:
		if len(val.Msg) > maxLen {
			return ErrLengthOverflow
		}
		buf.WriteByte(tagError)
		if val.IsServerErr {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		buf.WriteByte(val.Code)
		putUint16(buf, uint16(len(val.Msg)))
		buf.Write(val.Msg)
	case Array:
		if len(val) > maxLen {
			return ErrLengthOverflow
		}
		buf.WriteByte(tagArray)
		putUint16(buf, uint16(len(val)))
		for _, elem := range val {
			if err := Encode(buf, elem); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("boop: unencodable value %T", v)
	}
	return nil
}

func putUint16(buf *Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putUint32(buf *Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint64(buf *Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// Decode reads a single Value from the head of buf. On BufTooShortError
// the buffer is left exactly as it was before the call — decodeAt never
// advances buf's read position until it has a complete Value in hand, so
// there is nothing to restore on failure.
func Decode(buf *Buffer) (Value, error) {
	data := buf.Bytes()
	v, n, err := decodeAt(data, 0)
	if err != nil {
		return nil, err
	}
	buf.Next(n)
	return v, nil
}

// DecodeValueAt decodes a single Value from the head of data without
// touching any Buffer. The command package builds on this to parse
// several operands out of one frame and commit them to the Buffer
// together, only once every operand has decoded successfully.
func DecodeValueAt(data []byte, depth int) (Value, int, error) {
	return decodeAt(data, depth)
}

func decodeAt(data []byte, depth int) (Value, int, error) {
	if len(data) < 1 {
		return nil, 0, &BufTooShortError{Region: "meta data byte"}
	}

	switch data[0] {
	case tagTiny:
		if len(data) < 2 {
			return nil, 0, &BufTooShortError{Region: "u8"}
		}
		return Tiny(data[1]), 2, nil

	case tagSmall:
		if len(data) < 3 {
			return nil, 0, &BufTooShortError{Region: "u16"}
		}
		return Small(binary.BigEndian.Uint16(data[1:3])), 3, nil

	case tagMedium:
		if len(data) < 5 {
			return nil, 0, &BufTooShortError{Region: "u32"}
		}
		return Medium(binary.BigEndian.Uint32(data[1:5])), 5, nil

	case tagLarge:
		if len(data) < 9 {
			return nil, 0, &BufTooShortError{Region: "u64"}
		}
		return Large(binary.BigEndian.Uint64(data[1:9])), 9, nil

	case tagFloatS:
		if len(data) < 5 {
			return nil, 0, &BufTooShortError{Region: "f32"}
		}
		return FloatS(math.Float32frombits(binary.BigEndian.Uint32(data[1:5]))), 5, nil

	case tagFloatL:
		if len(data) < 9 {
			return nil, 0, &BufTooShortError{Region: "f64"}
		}
		return FloatL(math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))), 9, nil

	case tagBoolFalse:
		return Bool(false), 1, nil

	case tagBoolTrue:
		return Bool(true), 1, nil

	case tagString:
		if len(data) < 3 {
			return nil, 0, &BufTooShortError{Region: "string header"}
		}
		strLen := int(binary.BigEndian.Uint16(data[1:3]))
		end := 3 + strLen
		if len(data) < end {
			return nil, 0, &BufTooShortError{Region: "string body"}
		}
		body := make([]byte, strLen)
		copy(body, data[3:end])
		return String(body), end, nil

	case tagError:
		if len(data) < 5 {
			return nil, 0, &BufTooShortError{Region: "error header"}
		}
		isServerErr := data[1] != 0
		code := data[2]
		errLen := int(binary.BigEndian.Uint16(data[3:5]))
		end := 5 + errLen
		if len(data) < end {
			return nil, 0, &BufTooShortError{Region: "error value"}
		}
		msg := make([]byte, errLen)
		copy(msg, data[5:end])
		return Error{IsServerErr: isServerErr, Code: code, Msg: msg}, end, nil

	case tagArray:
		if depth >= MaxDepth {
			return nil, 0, ErrDepthExceeded
		}
		if len(data) < 3 {
			return nil, 0, &BufTooShortError{Region: "array header"}
		}
		elemN := int(binary.BigEndian.Uint16(data[1:3]))
		offset := 3
		elems := make([]Value, 0, elemN)
		for i := 0; i < elemN; i++ {
			elem, n, err := decodeAt(data[offset:], depth+1)
			if err != nil {
				if _, short := err.(*BufTooShortError); short {
					return nil, 0, &BufTooShortError{Region: "array element"}
				}
				return nil, 0, err
			}
			elems = append(elems, elem)
			offset += n
		}
		return Array(elems), offset, nil

	default:
		return nil, 0, &UnknownTagError{Tag: data[0]}
	}
}
