// Package trace implements a streaming codec for the .utracy capture
// format. It understands exactly enough of the container to rewrite the
// srcloc table: the fixed header, the table itself, and an opaque tail
// that is passed through byte for byte.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Container constants. Only the signature and version words of the header
// are interpreted; the remaining header bytes are payload that must survive
// a rewrite unmodified.
const (
	// HeaderSize is the fixed size of the .utracy header block in bytes.
	HeaderSize = 1200

	// Signature is the little-endian magic at offset 0, the ASCII tag
	// "utracydm" read as a u64.
	Signature uint64 = 0x6D64796361727475

	// Version is the only container version the codec accepts.
	Version uint32 = 2

	sigOffset = 0
	verOffset = 8
)

// Error taxonomy for the codec. Callers match with errors.Is; every error
// returned by this package wraps exactly one of these or is a plain I/O
// error from the underlying stream.
var (
	ErrBadSignature       = errors.New("invalid .utracy signature")
	ErrUnsupportedVersion = errors.New("unsupported .utracy version")
	ErrTruncated          = errors.New("truncated .utracy input")
	ErrInvalidEncoding    = errors.New("string is not valid UTF-8")
)

// Header is the raw 1200-byte block at the start of every capture.
type Header struct {
	raw [HeaderSize]byte
}

// Signature returns the u64 magic stored at the front of the header.
func (h *Header) Signature() uint64 {
	return binary.LittleEndian.Uint64(h.raw[sigOffset : sigOffset+8])
}

// Version returns the container version stored after the signature.
func (h *Header) Version() uint32 {
	return binary.LittleEndian.Uint32(h.raw[verOffset : verOffset+4])
}

// Bytes returns the raw header block.
func (h *Header) Bytes() []byte {
	return h.raw[:]
}

// ReadHeader consumes exactly HeaderSize bytes from r and validates the
// signature and version. It is the first gate of a rewrite: nothing should
// be written downstream until it succeeds.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	if _, err := io.ReadFull(r, h.raw[:]); err != nil {
		return nil, wrapRead(err, "reading file header")
	}
	if sig := h.Signature(); sig != Signature {
		return nil, fmt.Errorf("%w: got 0x%016X, expected 0x%016X", ErrBadSignature, sig, Signature)
	}
	if v := h.Version(); v != Version {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, Version)
	}
	return &h, nil
}

// Encode writes the header block to w unchanged.
func (h *Header) Encode(w io.Writer) error {
	if _, err := w.Write(h.raw[:]); err != nil {
		return fmt.Errorf("writing file header: %w", err)
	}
	return nil
}

// wrapRead maps short reads onto ErrTruncated so callers can distinguish a
// cut-off file from an I/O fault on the source.
func wrapRead(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
