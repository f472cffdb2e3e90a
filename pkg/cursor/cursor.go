// Package cursor provides a minimal sequential reader over a fixed byte
// buffer. It centralizes the bounds-check policy for all format decoders:
// every read either consumes exactly its width or fails with
// gotherm.ErrTruncatedData, and the position never moves backward.
package cursor

import (
	"encoding/binary"

	"github.com/mlsorensen/gotherm"
)

// Cursor reads typed values from a byte buffer, front to back.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a Cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Skip advances the position by n bytes without interpreting them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.Remaining() < n {
		return gotherm.ErrTruncatedData
	}
	c.pos += n
	return nil
}

// ReadU8 consumes one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, gotherm.ErrTruncatedData
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// ReadI8 consumes one byte as a signed value.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16LE consumes two bytes, little-endian.
func (c *Cursor) ReadU16LE() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, gotherm.ErrTruncatedData
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadU16BE consumes two bytes, big-endian.
func (c *Cursor) ReadU16BE() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, gotherm.ErrTruncatedData
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadI16LE consumes two bytes, little-endian, as a signed value.
func (c *Cursor) ReadI16LE() (int16, error) {
	v, err := c.ReadU16LE()
	return int16(v), err
}
