package cursor

import (
	"errors"
	"testing"

	"github.com/mlsorensen/gotherm"
)

func TestReadsAdvancePosition(t *testing.T) {
	c := New([]byte{0x01, 0x34, 0x12, 0x12, 0x34, 0xFF, 0x2E, 0xFB})

	if got := c.Remaining(); got != 8 {
		t.Fatalf("Remaining() = %d; want 8", got)
	}

	u8, err := c.ReadU8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("ReadU8() = (%#x, %v); want (0x1, nil)", u8, err)
	}

	u16le, err := c.ReadU16LE()
	if err != nil || u16le != 0x1234 {
		t.Fatalf("ReadU16LE() = (%#x, %v); want (0x1234, nil)", u16le, err)
	}

	u16be, err := c.ReadU16BE()
	if err != nil || u16be != 0x1234 {
		t.Fatalf("ReadU16BE() = (%#x, %v); want (0x1234, nil)", u16be, err)
	}

	i8, err := c.ReadI8()
	if err != nil || i8 != -1 {
		t.Fatalf("ReadI8() = (%d, %v); want (-1, nil)", i8, err)
	}

	i16, err := c.ReadI16LE()
	if err != nil || i16 != -1234 {
		t.Fatalf("ReadI16LE() = (%d, %v); want (-1234, nil)", i16, err)
	}

	if got := c.Remaining(); got != 0 {
		t.Fatalf("Remaining() = %d; want 0", got)
	}
}

func TestSkip(t *testing.T) {
	c := New([]byte{0xAA, 0xBB, 0xCC})

	if err := c.Skip(2); err != nil {
		t.Fatalf("Skip(2) = %v; want nil", err)
	}
	v, err := c.ReadU8()
	if err != nil || v != 0xCC {
		t.Fatalf("ReadU8() after Skip = (%#x, %v); want (0xcc, nil)", v, err)
	}

	if err := c.Skip(1); !errors.Is(err, gotherm.ErrTruncatedData) {
		t.Fatalf("Skip past end = %v; want ErrTruncatedData", err)
	}
	if err := New([]byte{0xAA}).Skip(-1); !errors.Is(err, gotherm.ErrTruncatedData) {
		t.Fatalf("Skip(-1) = %v; want ErrTruncatedData", err)
	}
}

func TestTruncatedReads(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(c *Cursor) error
	}{
		{"u8 on empty", nil, func(c *Cursor) error { _, err := c.ReadU8(); return err }},
		{"i8 on empty", nil, func(c *Cursor) error { _, err := c.ReadI8(); return err }},
		{"u16le on one byte", []byte{0x01}, func(c *Cursor) error { _, err := c.ReadU16LE(); return err }},
		{"u16be on one byte", []byte{0x01}, func(c *Cursor) error { _, err := c.ReadU16BE(); return err }},
		{"i16le on one byte", []byte{0x01}, func(c *Cursor) error { _, err := c.ReadI16LE(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.buf)
			before := c.Remaining()
			if err := tt.read(c); !errors.Is(err, gotherm.ErrTruncatedData) {
				t.Fatalf("err = %v; want ErrTruncatedData", err)
			}
			// A failed read leaves the position where it was.
			if c.Remaining() != before {
				t.Fatalf("Remaining() changed from %d to %d on failed read", before, c.Remaining())
			}
		})
	}
}
