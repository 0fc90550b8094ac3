package server

import (
	"net"
	"testing"
	"time"

	"github.com/notthelewis/blewis/boop"
	"github.com/notthelewis/blewis/command"
	"github.com/notthelewis/blewis/store"
)

type testLog struct{}

func (testLog) Infof(string, ...interface{})  {}
func (testLog) Errorf(string, ...interface{}) {}

func TestHandleSetThenGetOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	st := store.New()
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		handle(nc, st, testLog{})
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	setBuf := boop.NewBuffer()
	setBuf.WriteByte(byte(command.OpSet))
	if err := boop.Encode(setBuf, boop.NewTiny(1)); err != nil {
		t.Fatal(err)
	}
	if err := boop.Encode(setBuf, boop.NewTiny(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(setBuf.Bytes()); err != nil {
		t.Fatalf("write Set: %v", err)
	}

	getBuf := boop.NewBuffer()
	getBuf.WriteByte(byte(command.OpGet))
	if err := boop.Encode(getBuf, boop.NewTiny(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(getBuf.Bytes()); err != nil {
		t.Fatalf("write Get: %v", err)
	}

	reply := boop.NewBuffer()
	chunk := make([]byte, 64)
	for reply.Len() < 1 {
		n, err := conn.Read(chunk)
		if err != nil {
			t.Fatalf("read reply: %v", err)
		}
		reply.Write(chunk[:n])
	}

	got, err := boop.Decode(reply)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if !got.Equal(boop.NewTiny(2)) {
		t.Fatalf("got %v, want Tiny(2)", got)
	}
}

func TestNextCommandResumesAcrossPartialWrites(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	c := newConn(srv)
	done := make(chan struct{})
	var gotCmd *command.Command
	var gotErr error
	go func() {
		gotCmd, gotErr = c.nextCommand()
		close(done)
	}()

	full := boop.NewBuffer()
	full.WriteByte(byte(command.OpGet))
	if err := boop.Encode(full, boop.NewTiny(9)); err != nil {
		t.Fatal(err)
	}
	data := full.Bytes()

	client.Write(data[:1])
	client.Write(data[1:])

	<-done
	if gotErr != nil {
		t.Fatalf("nextCommand: %v", gotErr)
	}
	if gotCmd.Op != command.OpGet || !gotCmd.Key.Equal(boop.NewTiny(9)) {
		t.Fatalf("got %+v, want Get(Tiny(9))", gotCmd)
	}
}
