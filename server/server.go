// Package server owns the listening socket, the per-connection read loop,
// and the byte plumbing between net.Conn and the command/boop packages.
// None of this is part of the core wire format — it is the reference
// binding the core is built to be driven by.
package server

import (
	"io"
	"net"

	uuid "github.com/satori/go.uuid"

	"github.com/notthelewis/blewis/boop"
	"github.com/notthelewis/blewis/command"
	"github.com/notthelewis/blewis/internal/logging"
	"github.com/notthelewis/blewis/store"
)

// DefaultAddr is the reference binding's listen address.
const DefaultAddr = "127.0.0.1:1523"

// readChunkSize is how much is pulled from the wire per conn.Read call
// while growing the per-connection buffer.
const readChunkSize = 4096

// Conn pairs one accepted connection with its own growable read buffer.
// The buffer is exclusively owned by this connection's goroutine; nothing
// else ever touches it.
type Conn struct {
	net.Conn
	id  uuid.UUID
	buf *boop.Buffer
}

func newConn(nc net.Conn) *Conn {
	return &Conn{Conn: nc, id: uuid.NewV4(), buf: boop.NewBuffer()}
}

// Serve accepts connections on ln until it returns an error, running each
// connection on its own goroutine against the shared store st.
//
// TODO: bound the number of concurrent connection goroutines; today one
// misbehaving client can spawn arbitrarily many.
func Serve(ln net.Listener, st *store.Store) error {
	log := logging.Log()
	for {
		nc, err := ln.Accept()
		if err != nil {
			return err
		}
		go handle(nc, st, log)
	}
}

func handle(nc net.Conn, st *store.Store, log logFunc) {
	c := newConn(nc)
	defer c.Close()

	log.Infof("connection %s: accepted", c.id)

	for {
		cmd, err := c.nextCommand()
		if err != nil {
			log.Errorf("connection %s: %s", c.id, err)
			return
		}

		reply, hasReply := command.Execute(cmd, st)
		if !hasReply {
			continue
		}

		out := boop.NewBuffer()
		if err := boop.Encode(out, reply); err != nil {
			log.Errorf("connection %s: encode reply: %s", c.id, err)
			return
		}
		if _, err := c.Write(out.Bytes()); err != nil {
			log.Errorf("connection %s: write reply: %s", c.id, err)
			return
		}
	}
}

// nextCommand implements the read/retry loop: attempt to decode a Command
// from whatever is already buffered; on BufTooShortError pull more bytes
// off the wire and try again; any other error terminates the connection.
func (c *Conn) nextCommand() (*command.Command, error) {
	for {
		cmd, err := command.Decode(c.buf)
		if err == nil {
			return cmd, nil
		}
		if _, ok := err.(*boop.BufTooShortError); !ok {
			return nil, err
		}

		chunk := make([]byte, readChunkSize)
		n, readErr := c.Conn.Read(chunk)
		if n > 0 {
			c.buf.Write(chunk[:n])
		}
		if readErr != nil {
			if readErr == io.EOF && n > 0 {
				continue
			}
			return nil, readErr
		}
	}
}

// logFunc is the subset of *logging.Logger handle needs, so tests can
// swap in a stub without pulling in op/go-logging's backend machinery.
type logFunc interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
