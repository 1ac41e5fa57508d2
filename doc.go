// Package gvnc implements the client side of the Remote Framebuffer (RFB)
// protocol: version and authentication negotiation, transport layering
// (raw TCP, TLS, SASL), framebuffer-update decoding across the standard
// RFB encodings, and input-event encoding on the send path.
//
// gvnc is deliberately not a widget toolkit. It exposes a Framebuffer and
// an event API; rendering the framebuffer to a screen, translating local
// keycodes to RFB keysyms, and managing pointer/keyboard grabs are the
// host application's job.
package gvnc
