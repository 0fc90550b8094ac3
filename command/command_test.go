package command

import (
	"testing"

	"github.com/notthelewis/blewis/boop"
	"github.com/notthelewis/blewis/store"
)

func TestDecodeGet(t *testing.T) {
	buf := boop.NewBuffer()
	buf.WriteByte(byte(OpGet))
	encodeInto(t, buf, boop.NewTiny(0xFF))

	cmd, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cmd.Op != OpGet || !cmd.Key.Equal(boop.NewTiny(0xFF)) || cmd.Val != nil {
		t.Fatalf("got %+v, want Get(Tiny(0xFF))", cmd)
	}
	if buf.Len() != 0 {
		t.Fatalf("Decode left %d unconsumed bytes", buf.Len())
	}
}

func TestDecodeGetSet(t *testing.T) {
	buf := boop.NewBuffer()
	buf.WriteByte(byte(OpGetSet))
	encodeInto(t, buf, boop.NewTiny(0xFF), boop.NewTiny(0xFF))

	cmd, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cmd.Op != OpGetSet || !cmd.Key.Equal(boop.NewTiny(0xFF)) || !cmd.Val.Equal(boop.NewTiny(0xFF)) {
		t.Fatalf("got %+v, want GetSet(Tiny(0xFF), Tiny(0xFF))", cmd)
	}
}

func TestDecodeSet(t *testing.T) {
	buf := boop.NewBuffer()
	buf.WriteByte(byte(OpSet))
	encodeInto(t, buf, boop.NewTiny(0xFF), boop.NewTiny(0xFF))

	cmd, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cmd.Op != OpSet || !cmd.Val.Equal(boop.NewTiny(0xFF)) {
		t.Fatalf("got %+v, want Set(Tiny(0xFF), Tiny(0xFF))", cmd)
	}
}

// TestUnknownOpcode rejects a frame whose leading byte is not one of the
// four known opcodes.
func TestUnknownOpcode(t *testing.T) {
	buf := boop.NewBuffer()
	buf.Write([]byte{0xFF, 0x00})

	_, err := Decode(buf)
	unknown, ok := err.(*boop.UnknownTagError)
	if !ok {
		t.Fatalf("got %v, want UnknownTagError", err)
	}
	if unknown.Tag != 0xFF {
		t.Fatalf("got tag 0x%02x, want 0xFF", unknown.Tag)
	}
}

func TestDecodeMissingOperandIsResumable(t *testing.T) {
	buf := boop.NewBuffer()
	buf.WriteByte(byte(OpGet))
	// no key bytes follow

	_, err := Decode(buf)
	if _, ok := err.(*boop.BufTooShortError); !ok {
		t.Fatalf("got %v, want BufTooShortError", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("buffer mutated on short read: len=%d, want 1", buf.Len())
	}
}

// TestGetSetAbsentKeyScenario runs GetSet against an empty store and
// expects the "no_exist" server Error rather than an absent reply.
func TestGetSetAbsentKeyScenario(t *testing.T) {
	st := store.New()
	buf := boop.NewBuffer()
	buf.WriteByte(byte(OpGetSet))
	buf.Write([]byte{0x08, 0x00, 0x07}) // key: Small(7)
	buf.WriteByte(0x84)                 // val: Bool(true)

	cmd, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	reply, hasReply := Execute(cmd, st)
	if !hasReply {
		t.Fatal("GetSet must always reply")
	}
	want := boop.NewError(true, 0x10, []byte("no_exist"))
	if !reply.Equal(want) {
		t.Fatalf("got %v, want %v", reply, want)
	}
}

// TestSetThenGetScenario writes a key with Set and reads it back with
// Get, checking Set's "no prior value" reply along the way.
func TestSetThenGetScenario(t *testing.T) {
	st := store.New()

	setBuf := boop.NewBuffer()
	setBuf.WriteByte(byte(OpSet))
	encodeInto(t, setBuf, boop.NewTiny(0), boop.NewTiny(1))

	setCmd, err := Decode(setBuf)
	if err != nil {
		t.Fatalf("Decode(Set): %v", err)
	}
	_, hasReply := Execute(setCmd, st)
	if hasReply {
		t.Fatal("Set on an empty store must not reply")
	}

	getBuf := boop.NewBuffer()
	getBuf.WriteByte(byte(OpGet))
	encodeInto(t, getBuf, boop.NewTiny(0))

	getCmd, err := Decode(getBuf)
	if err != nil {
		t.Fatalf("Decode(Get): %v", err)
	}
	reply, hasReply := Execute(getCmd, st)
	if !hasReply || !reply.Equal(boop.NewTiny(1)) {
		t.Fatalf("got (%v, %v), want (Tiny(1), true)", reply, hasReply)
	}
}

func encodeInto(t *testing.T, buf *boop.Buffer, vs ...boop.Value) {
	t.Helper()
	for _, v := range vs {
		if err := boop.Encode(buf, v); err != nil {
			t.Fatalf("Encode(%v): %v", v, err)
		}
	}
}
