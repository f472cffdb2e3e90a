package gotherm

import (
	"errors"
	"fmt"
)

// Sentinel decode errors. Format decoders return these (possibly wrapped) so
// callers can classify failures with errors.Is regardless of source format.
var (
	// ErrTruncatedData means the payload ended before a format or field
	// required it to.
	ErrTruncatedData = errors.New("truncated data")

	// ErrUnknownObjectID means a TLV object-id/type byte is not in the
	// format's known table. The decoder never guesses a width.
	ErrUnknownObjectID = errors.New("unknown object id")

	// ErrEncryptedUnsupported means the payload advertises encryption, which
	// this library does not decode.
	ErrEncryptedUnsupported = errors.New("encrypted payload not supported")

	// ErrUnsupportedVersion means the payload's protocol version field does
	// not match the version the decoder implements.
	ErrUnsupportedVersion = errors.New("unsupported protocol version")

	// ErrUnrecognizedFormat means no registered format matched the
	// advertisement. This is a routing outcome, not a decode failure; the
	// scan session drops such advertisements silently.
	ErrUnrecognizedFormat = errors.New("unrecognized advertisement format")
)

// DecodeError labels a decode failure with the format whose identifier
// matched the advertisement. The identifier match is authoritative, so the
// error is never retried against another format.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
