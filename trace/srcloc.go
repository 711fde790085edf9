package trace

import "io"

// SourceLocation is one entry in the srcloc table. Line and color are
// opaque to the rewrite and carried as raw bytes so that a re-encoded
// record is byte-identical to its input.
type SourceLocation struct {
	Name     string
	Function string
	File     string
	Line     [4]byte
	Color    [4]byte
}

// DecodeSourceLocation reads exactly one record from r. On success the
// cursor has advanced by 4+len(name) + 4+len(function) + 4+len(file) + 8
// bytes, no more and no less.
func DecodeSourceLocation(r io.Reader) (SourceLocation, error) {
	var loc SourceLocation
	var err error

	if loc.Name, err = readString(r, "reading srcloc.name"); err != nil {
		return SourceLocation{}, err
	}
	if loc.Function, err = readString(r, "reading srcloc.function"); err != nil {
		return SourceLocation{}, err
	}
	if loc.File, err = readString(r, "reading srcloc.file"); err != nil {
		return SourceLocation{}, err
	}
	if _, err = io.ReadFull(r, loc.Line[:]); err != nil {
		return SourceLocation{}, wrapRead(err, "reading srcloc.line")
	}
	if _, err = io.ReadFull(r, loc.Color[:]); err != nil {
		return SourceLocation{}, wrapRead(err, "reading srcloc.color")
	}
	return loc, nil
}

// Encode writes the record to w in wire order.
func (s SourceLocation) Encode(w io.Writer) error {
	if err := writeString(w, s.Name, "writing srcloc.name"); err != nil {
		return err
	}
	if err := writeString(w, s.Function, "writing srcloc.function"); err != nil {
		return err
	}
	if err := writeString(w, s.File, "writing srcloc.file"); err != nil {
		return err
	}
	if _, err := w.Write(s.Line[:]); err != nil {
		return wrapWrite(err, "writing srcloc.line")
	}
	if _, err := w.Write(s.Color[:]); err != nil {
		return wrapWrite(err, "writing srcloc.color")
	}
	return nil
}

// Redacted returns a copy of the record with all three string fields
// replaced by token. The name field is blanked even though it never drives
// the redaction decision; that asymmetry is part of the format's contract.
func (s SourceLocation) Redacted(token string) SourceLocation {
	return SourceLocation{
		Name:     token,
		Function: token,
		File:     token,
		Line:     s.Line,
		Color:    s.Color,
	}
}
