package boop

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// Kind identifies a Value's wire variant. It is distinct from the wire tag
// byte: several tags (Bool true/false) share a Kind, and Kind exists purely
// so Go code can switch on variant without re-deriving it from a tag.
type Kind uint8

const (
	KindTiny Kind = iota
	KindSmall
	KindMedium
	KindLarge
	KindFloatS
	KindFloatL
	KindBool
	KindString
	KindError
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindTiny:
		return "Tiny"
	case KindSmall:
		return "Small"
	case KindMedium:
		return "Medium"
	case KindLarge:
		return "Large"
	case KindFloatS:
		return "FloatS"
	case KindFloatL:
		return "FloatL"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindError:
		return "Error"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is the tagged union at the core of BOOP. It is immutable after
// construction: every constructor below returns a value ready to be shared
// across the store and the network buffer without further copying. String
// and Error payloads hold their bytes as plain Go slices — a slice header
// is itself a cheap, shareable reference to a backing array, so passing a
// Value around never deep-copies its byte payload.
type Value interface {
	Kind() Kind
	// Equal reports whether other has the same Kind and payload. Widths
	// are never coerced: a Tiny holding 1 is never equal to a Small
	// holding 1.
	Equal(other Value) bool
	// Hash agrees with Equal: Equal values always hash alike.
	Hash() uint64
	String() string
}

// Tiny is an 8-bit unsigned integer, wire tag 0.
type Tiny uint8

// NewTiny constructs a Tiny value.
func NewTiny(v uint8) Value { return Tiny(v) }

func (v Tiny) Kind() Kind { return KindTiny }
func (v Tiny) Equal(other Value) bool {
	o, ok := other.(Tiny)
	return ok && v == o
}
func (v Tiny) Hash() uint64   { return hashTag(tagTiny, byte(v)) }
func (v Tiny) String() string { return fmt.Sprintf("Tiny(%d)", uint8(v)) }

// Small is a 16-bit unsigned integer, wire tag 8.
type Small uint16

// NewSmall constructs a Small value.
func NewSmall(v uint16) Value { return Small(v) }

func (v Small) Kind() Kind { return KindSmall }
func (v Small) Equal(other Value) bool {
	o, ok := other.(Small)
	return ok && v == o
}
func (v Small) Hash() uint64 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return hashTag(tagSmall, b[:]...)
}
func (v Small) String() string { return fmt.Sprintf("Small(%d)", uint16(v)) }

// Medium is a 32-bit unsigned integer, wire tag 16.
type Medium uint32

// NewMedium constructs a Medium value.
func NewMedium(v uint32) Value { return Medium(v) }

func (v Medium) Kind() Kind { return KindMedium }
func (v Medium) Equal(other Value) bool {
	o, ok := other.(Medium)
	return ok && v == o
}
func (v Medium) Hash() uint64 {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return hashTag(tagMedium, b[:]...)
}
func (v Medium) String() string { return fmt.Sprintf("Medium(%d)", uint32(v)) }

// Large is a 64-bit unsigned integer, wire tag 32.
type Large uint64

// NewLarge constructs a Large value.
func NewLarge(v uint64) Value { return Large(v) }

func (v Large) Kind() Kind { return KindLarge }
func (v Large) Equal(other Value) bool {
	o, ok := other.(Large)
	return ok && v == o
}
func (v Large) Hash() uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return hashTag(tagLarge, b[:]...)
}
func (v Large) String() string { return fmt.Sprintf("Large(%d)", uint64(v)) }

// FloatS is a 32-bit IEEE-754 float, wire tag 48. Equality and hashing use
// the raw bit pattern, not numeric comparison: +0.0 and -0.0 are distinct,
// and two NaN payloads are equal only if their bits match. This gives
// FloatS a total order suitable for use as a map key, unlike Go's native
// float32 == operator.
type FloatS float32

// NewFloatS constructs a FloatS value.
func NewFloatS(v float32) Value { return FloatS(v) }

func (v FloatS) Kind() Kind { return KindFloatS }
func (v FloatS) Equal(other Value) bool {
	o, ok := other.(FloatS)
	return ok && math.Float32bits(float32(v)) == math.Float32bits(float32(o))
}
func (v FloatS) Hash() uint64 {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(v)))
	return hashTag(tagFloatS, b[:]...)
}
func (v FloatS) String() string { return fmt.Sprintf("FloatS(%v)", float32(v)) }

// FloatL is a 64-bit IEEE-754 float, wire tag 56. See FloatS for the bit-
// pattern equality rule.
type FloatL float64

// NewFloatL constructs a FloatL value.
func NewFloatL(v float64) Value { return FloatL(v) }

func (v FloatL) Kind() Kind { return KindFloatL }
func (v FloatL) Equal(other Value) bool {
	o, ok := other.(FloatL)
	return ok && math.Float64bits(float64(v)) == math.Float64bits(float64(o))
}
func (v FloatL) Hash() uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(float64(v)))
	return hashTag(tagFloatL, b[:]...)
}
func (v FloatL) String() string { return fmt.Sprintf("FloatL(%v)", float64(v)) }

// Bool is a boolean, wire tags 4 (false) and 132 (true).
type Bool bool

// NewBool constructs a Bool value.
func NewBool(v bool) Value { return Bool(v) }

func (v Bool) Kind() Kind { return KindBool }
func (v Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && v == o
}
func (v Bool) Hash() uint64 {
	if v {
		return hashTag(tagBoolTrue)
	}
	return hashTag(tagBoolFalse)
}
func (v Bool) String() string { return fmt.Sprintf("Bool(%t)", bool(v)) }

// String is an immutable byte string, wire tag 2. The zero value is the
// empty string.
type String []byte

// NewString constructs a String value from b. The caller must not mutate b
// afterwards; Value holds it by reference, so the Store and replies share
// the payload without copying. Decode does not alias the read buffer: it
// copies each String or Error payload out of the buffer into a new slice.
func NewString(b []byte) Value { return String(b) }

func (v String) Kind() Kind { return KindString }
func (v String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && bytes.Equal(v, o)
}
func (v String) Hash() uint64 { return hashTag(tagString, []byte(v)...) }
func (v String) String() string {
	return fmt.Sprintf("String(%q)", []byte(v))
}

// Error is a typed, carryable error value, wire tag 6. It is ordinary data
// from BOOP's point of view: clients must inspect IsServerErr/Code rather
// than treat receiving an Error variant as a transport failure.
type Error struct {
	IsServerErr bool
	Code        uint8
	Msg         []byte
}

// NewError constructs an Error value.
func NewError(isServerErr bool, code uint8, msg []byte) Value {
	return Error{IsServerErr: isServerErr, Code: code, Msg: msg}
}

func (v Error) Kind() Kind { return KindError }
func (v Error) Equal(other Value) bool {
	o, ok := other.(Error)
	return ok && v.IsServerErr == o.IsServerErr && v.Code == o.Code && bytes.Equal(v.Msg, o.Msg)
}
func (v Error) Hash() uint64 {
	flag := byte(0)
	if v.IsServerErr {
		flag = 1
	}
	return hashTag(tagError, flag, v.Code) ^ hashTag(tagError, v.Msg...)
}
func (v Error) String() string {
	return fmt.Sprintf("Error{server=%t, code=0x%02x, msg=%q}", v.IsServerErr, v.Code, v.Msg)
}

// Array is an ordered, arbitrarily nested sequence of Values, wire tag 3.
type Array []Value

// NewArray constructs an Array value.
func NewArray(elems []Value) Value { return Array(elems) }

func (v Array) Kind() Kind { return KindArray }
func (v Array) Equal(other Value) bool {
	o, ok := other.(Array)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if !v[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
func (v Array) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{tagArray})
	for _, elem := range v {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], elem.Hash())
		h.Write(b[:])
	}
	return h.Sum64()
}
func (v Array) String() string {
	return fmt.Sprintf("Array(%d elems)", len(v))
}

// hashTag combines a wire tag with zero or more payload bytes into a
// single FNV-1a digest. Every variant except Array hashes through it;
// Array.Hash runs its own FNV-1a digest over the array tag and each
// element's Hash.
func hashTag(tag byte, payload ...byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte{tag})
	h.Write(payload)
	return h.Sum64()
}
