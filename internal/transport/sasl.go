package transport

import "fmt"

// SASL wraps an underlying Stream once SASL authentication has completed
// with a negotiated security strength factor (SSF). Frames are only
// re-encoded/decoded when SSF > 0 — with SSF == 0 (the common case for
// SCRAM, which defines no confidentiality layer of its own) this layer
// is a pure pass-through, and the engine is expected to have already
// enforced a minimum SSF policy before ever reaching this point, so an
// SSF-0 SASL layer only ever sits on top of a TLS layer in practice.
//
// A nonzero-SSF mechanism (e.g. DIGEST-MD5, GSSAPI) would need per-frame
// length-prefixed encode/decode callbacks from the mechanism; no such
// mechanism is wired in this module (see DESIGN.md), so the encode/
// decode callbacks are identity when nil and Wrap only needs to exist as the seam
// a future mechanism would hook into.
type SASL struct {
	under  Stream
	ssf    int
	encode func([]byte) ([]byte, error)
	decode func([]byte) ([]byte, error)
	pend   []byte
}

// Wrap installs the SASL-encoded layer above under. ssf is the
// server-and-client-negotiated security strength factor; encode/decode may
// be nil to mean "identity" (SSF 0).
func Wrap(under Stream, ssf int, encode, decode func([]byte) ([]byte, error)) *SASL {
	if encode == nil {
		encode = func(b []byte) ([]byte, error) { return b, nil }
	}
	if decode == nil {
		decode = func(b []byte) ([]byte, error) { return b, nil }
	}
	return &SASL{under: under, ssf: ssf, encode: encode, decode: decode}
}

func (s *SASL) SSF() int { return s.ssf }

func (s *SASL) ReadExact(buf []byte) error {
	for len(s.pend) < len(buf) {
		chunk := make([]byte, 4096)
		n, err := s.under.ReadAvailable(chunk)
		if n > 0 {
			dec, derr := s.decode(chunk[:n])
			if derr != nil {
				return fmt.Errorf("transport: SASL decode: %w", derr)
			}
			s.pend = append(s.pend, dec...)
		}
		if err != nil {
			return err
		}
	}
	copy(buf, s.pend[:len(buf)])
	s.pend = s.pend[len(buf):]
	return nil
}

func (s *SASL) ReadAvailable(buf []byte) (int, error) {
	if len(s.pend) == 0 {
		chunk := make([]byte, 4096)
		n, err := s.under.ReadAvailable(chunk)
		if n > 0 {
			dec, derr := s.decode(chunk[:n])
			if derr != nil {
				return 0, fmt.Errorf("transport: SASL decode: %w", derr)
			}
			s.pend = append(s.pend, dec...)
		}
		if err != nil && len(s.pend) == 0 {
			return 0, err
		}
	}
	n := copy(buf, s.pend)
	s.pend = s.pend[n:]
	return n, nil
}

func (s *SASL) Write(buf []byte) error {
	enc, err := s.encode(buf)
	if err != nil {
		return fmt.Errorf("transport: SASL encode: %w", err)
	}
	return s.under.Write(enc)
}

func (s *SASL) Flush() error { return s.under.Flush() }
func (s *SASL) Close() error { return s.under.Close() }
