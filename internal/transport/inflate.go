package transport

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// InflatePool holds the five zlib inflate contexts RFB decoding needs:
// stream 0 for ZRLE, streams 1..4 for Tight. Each is a single continuous
// DEFLATE stream spanning every rectangle that uses it for the life of
// the connection, except where the wire protocol explicitly says
// otherwise (Tight's per-rectangle reset bits); state persists across
// Feed calls and is only discarded by an explicit Reset.
type InflatePool struct {
	streams [5]*inflateStream
}

type inflateStream struct {
	src    *cursorReader
	zr     io.ReadCloser
	seeded bool
}

// NewInflatePool returns a pool with all five streams uninitialized; each
// is lazily seeded from the first bytes Fed to it.
func NewInflatePool() *InflatePool {
	return &InflatePool{}
}

func (p *InflatePool) stream(idx int) (*inflateStream, error) {
	if idx < 0 || idx >= len(p.streams) {
		return nil, fmt.Errorf("transport: invalid inflate stream index %d", idx)
	}
	s := p.streams[idx]
	if s == nil {
		s = &inflateStream{src: &cursorReader{}}
		p.streams[idx] = s
	}
	return s, nil
}

// Reset discards stream idx's decompressor and any buffered input,
// forcing the next Feed/ReadN pair to start a fresh zlib stream (a new
// zlib header is expected on the next Feed). Used by Tight's per-stream
// reset bits.
func (p *InflatePool) Reset(idx int) {
	if idx < 0 || idx >= len(p.streams) {
		return
	}
	p.streams[idx] = nil
}

// Feed appends newly-read compressed bytes to stream idx's input queue.
// The caller must Feed a rectangle's entire declared compressed length
// before calling ReadN for the decompressed content it implies, so the
// persistent DEFLATE stream never observes a premature end of input.
func (p *InflatePool) Feed(idx int, compressed []byte) error {
	s, err := p.stream(idx)
	if err != nil {
		return err
	}
	s.src.feed(compressed)
	return nil
}

// ReadN pulls exactly n decompressed bytes from stream idx, lazily
// initializing the zlib reader (which consumes the stream's zlib header)
// on first use.
func (p *InflatePool) ReadN(idx int, n int) ([]byte, error) {
	s, err := p.stream(idx)
	if err != nil {
		return nil, err
	}
	if !s.seeded {
		zr, err := zlib.NewReader(s.src)
		if err != nil {
			return nil, fmt.Errorf("transport: zlib stream %d init: %w", idx, err)
		}
		s.zr = zr
		s.seeded = true
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(s.zr, out); err != nil {
		return nil, fmt.Errorf("transport: zlib stream %d inflate: %w", idx, err)
	}
	return out, nil
}

// cursorReader is an io.Reader over a byte queue that callers Feed more
// data into between Read calls; it never synthesizes an EOF while there
// might be more data coming, matching the continuous-stream model above —
// it only ever returns io.EOF when genuinely drained, which a correctly
// driven Feed/ReadN pair never triggers mid-rectangle.
type cursorReader struct {
	buf []byte
	pos int
}

func (c *cursorReader) feed(b []byte) {
	if c.pos > 0 && c.pos == len(c.buf) {
		c.buf = c.buf[:0]
		c.pos = 0
	} else if c.pos > 64*1024 {
		c.buf = append(c.buf[:0], c.buf[c.pos:]...)
		c.pos = 0
	}
	c.buf = append(c.buf, b...)
}

func (c *cursorReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	n := copy(p, c.buf[c.pos:])
	c.pos += n
	return n, nil
}
