package gvnc

import (
	"bytes"
	"io"
)

// memStream is a transport.Stream backed by an in-memory byte slice, used
// to feed canned wire bytes into a Client's decode paths without a real
// socket.
type memStream struct {
	r *bytes.Reader
	w bytes.Buffer
}

func newMemStream(data []byte) *memStream {
	return &memStream{r: bytes.NewReader(data)}
}

func (m *memStream) ReadExact(buf []byte) error {
	_, err := io.ReadFull(m.r, buf)
	return err
}

func (m *memStream) ReadAvailable(buf []byte) (int, error) {
	return m.r.Read(buf)
}

func (m *memStream) Write(buf []byte) error {
	m.w.Write(buf)
	return nil
}

func (m *memStream) Flush() error { return nil }
func (m *memStream) Close() error { return nil }

// newDecodeTestClient builds a Client with no live network connection,
// wired directly to stream and a fresh width x height framebuffer, enough
// to exercise the decode* methods in isolation.
func newDecodeTestClient(stream *memStream, serverFormat, localFormat PixelFormat, width, height int) *Client {
	c := &Client{
		stream:       stream,
		serverFormat: serverFormat,
	}
	c.fb = NewFramebuffer(width, height, serverFormat, localFormat)
	return c
}
