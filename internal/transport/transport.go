// Package transport implements the byte-stream stack the RFB engine reads
// and writes through: a raw TCP layer, an optional TLS layer, and an
// optional SASL-encoded layer, composed so the engine never has to know
// which of the three it is currently talking to.
package transport

import (
	"bufio"
	"io"
	"net"
)

// Stream is what the connection engine reads and writes through,
// regardless of which layers are currently engaged underneath it.
type Stream interface {
	// ReadExact fills buf completely or returns an error.
	ReadExact(buf []byte) error
	// ReadAvailable performs one underlying read and returns how many
	// bytes it produced; used by the interruptable RUNNING-loop read.
	ReadAvailable(buf []byte) (int, error)
	// Write appends buf to the pending write buffer.
	Write(buf []byte) error
	// Flush sends any pending written bytes to the wire.
	Flush() error
	// Close tears the stream down along with everything beneath it.
	Close() error
}

// Raw is the bottom layer: a buffered reader over a net.Conn and an
// explicit write-then-flush buffer, matching bradfitz-rfbgo/rfb.go's
// br/bw pair, generalized behind an interface so TLS/SASL can be swapped
// in above it.
type Raw struct {
	conn net.Conn
	br   *bufio.Reader
	out  []byte
}

// NewRaw wraps conn as the bottom transport layer.
func NewRaw(conn net.Conn) *Raw {
	return &Raw{conn: conn, br: bufio.NewReaderSize(conn, 16*1024)}
}

func (r *Raw) ReadExact(buf []byte) error {
	_, err := io.ReadFull(r.br, buf)
	return err
}

func (r *Raw) ReadAvailable(buf []byte) (int, error) {
	return r.br.Read(buf)
}

func (r *Raw) Write(buf []byte) error {
	r.out = append(r.out, buf...)
	return nil
}

func (r *Raw) Flush() error {
	if len(r.out) == 0 {
		return nil
	}
	_, err := r.conn.Write(r.out)
	r.out = r.out[:0]
	return err
}

func (r *Raw) Close() error {
	return r.conn.Close()
}

// Conn exposes the underlying net.Conn so a higher layer (TLS) can
// renegotiate the transport. Only valid before any bytes have been
// buffered ahead by br beyond what TLS's own handshake will consume; the
// engine only ever calls Upgrade immediately after the auth-type byte
// exchange, before any further reads, so br never holds read-ahead bytes
// that belong to the TLS record layer.
func (r *Raw) Conn() net.Conn { return r.conn }
