// Package command implements the opcode-led frame on top of BOOP: it
// parses a request into a dispatchable operation and executes that
// operation against a store.Store.
package command

import (
	"github.com/notthelewis/blewis/boop"
	"github.com/notthelewis/blewis/store"
)

// Opcode selects which store operation a Command performs.
type Opcode byte

const (
	OpGet    Opcode = 0x00
	OpGetSet Opcode = 0x01
	OpGetDel Opcode = 0x02
	OpSet    Opcode = 0x10
)

func (op Opcode) String() string {
	switch op {
	case OpGet:
		return "Get"
	case OpGetSet:
		return "GetSet"
	case OpGetDel:
		return "GetDel"
	case OpSet:
		return "Set"
	default:
		return "Unknown"
	}
}

// Command is the parsed form of one request: an opcode plus the operand
// Values it carries. It is stateless — Execute takes the store handle as
// an argument rather than the Command holding one, so a single Command
// value never outlives the request it was parsed from.
type Command struct {
	Op  Opcode
	Key boop.Value
	Val boop.Value // nil unless Op is OpGetSet or OpSet
}

// Decode parses one Command from the head of buf. It follows the same
// resumable contract as boop.Decode: on a BufTooShortError the buffer is
// left untouched, because nothing is committed to buf until every operand
// — the opcode byte included — has decoded successfully.
func Decode(buf *boop.Buffer) (*Command, error) {
	data := buf.Bytes()
	if len(data) < 1 {
		return nil, &boop.BufTooShortError{Region: "command"}
	}

	op := Opcode(data[0])
	switch op {
	case OpGet, OpGetSet, OpGetDel, OpSet:
		// operand decoding below
	default:
		return nil, &boop.UnknownTagError{Tag: byte(op)}
	}

	offset := 1
	key, n, err := boop.DecodeValueAt(data[offset:], 0)
	if err != nil {
		return nil, err
	}
	offset += n

	cmd := &Command{Op: op, Key: key}

	if op == OpGetSet || op == OpSet {
		val, n, err := boop.DecodeValueAt(data[offset:], 0)
		if err != nil {
			return nil, err
		}
		offset += n
		cmd.Val = val
	}

	buf.Next(offset)
	return cmd, nil
}

// Execute applies cmd to st and reports the reply Value, if any. Get
// replies with the current value and GetDel and Set with the prior value,
// each only when one existed; GetSet always replies, substituting a server "no_exist" Error when
// there was no prior value.
func Execute(cmd *Command, st *store.Store) (reply boop.Value, hasReply bool) {
	switch cmd.Op {
	case OpGet:
		return st.Get(cmd.Key)
	case OpGetDel:
		return st.GetDel(cmd.Key)
	case OpSet:
		return st.Set(cmd.Key, cmd.Val)
	case OpGetSet:
		return st.GetSet(cmd.Key, cmd.Val), true
	default:
		return nil, false
	}
}
