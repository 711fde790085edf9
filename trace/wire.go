package trace

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// Wire primitives for the fields that make up the srcloc table. Everything
// is little-endian; strings are a u32 length prefix followed by that many
// raw UTF-8 bytes.

func wrapWrite(err error, what string) error {
	return fmt.Errorf("%s: %w", what, err)
}

func readUint32(r io.Reader, what string) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapRead(err, what)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32, what string) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return wrapWrite(err, what)
	}
	return nil
}

func readString(r io.Reader, what string) (string, error) {
	n, err := readUint32(r, what)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", wrapRead(err, what)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, what)
	}
	return string(b), nil
}

func writeString(w io.Writer, s, what string) error {
	if err := writeUint32(w, uint32(len(s)), what); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return wrapWrite(err, what)
	}
	return nil
}
