package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_RoundTrip(t *testing.T) {
	tcs := []struct {
		name string
		loc  SourceLocation
	}{
		{
			name: "typical record",
			loc: SourceLocation{
				Name:     "zone",
				Function: "compute",
				File:     "/src/app.cpp",
				Line:     [4]byte{0x2A, 0, 0, 0},
				Color:    [4]byte{0xFF, 0x00, 0x7F, 0x01},
			},
		},
		{
			name: "empty strings",
			loc:  SourceLocation{},
		},
		{
			name: "non-ascii strings",
			loc: SourceLocation{
				Name:     "zóne",
				Function: "compute_π",
				File:     "/src/appé.cpp",
			},
		},
	}

	for _, tc := range tcs {
		buf := new(bytes.Buffer)
		require.NoError(t, tc.loc.Encode(buf), tc.name)

		// On-wire size is exactly the sum of the field encodings.
		wantSize := 4 + len(tc.loc.Name) + 4 + len(tc.loc.Function) + 4 + len(tc.loc.File) + 4 + 4
		assert.Equal(t, wantSize, buf.Len(), tc.name)

		got, err := DecodeSourceLocation(buf)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.loc, got, tc.name)
		// The decoder must leave nothing behind for the next record.
		assert.Zero(t, buf.Len(), tc.name)
	}
}

func TestDecodeSourceLocation_Truncated(t *testing.T) {
	full := new(bytes.Buffer)
	loc := SourceLocation{Name: "n", Function: "fn", File: "/f.cpp", Line: [4]byte{1}, Color: [4]byte{2}}
	require.NoError(t, loc.Encode(full))

	// Any prefix of a record is a truncation, wherever the cut lands.
	for cut := 0; cut < full.Len(); cut++ {
		_, err := DecodeSourceLocation(bytes.NewReader(full.Bytes()[:cut]))
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestDecodeSourceLocation_InvalidEncoding(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write([]byte{2, 0, 0, 0, 0xFF, 0xFE}) // length 2, invalid UTF-8

	_, err := DecodeSourceLocation(buf)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestSourceLocation_Redacted(t *testing.T) {
	loc := SourceLocation{
		Name:     "zone",
		Function: "load_secret_key",
		File:     "/src/code_secret/key.cpp",
		Line:     [4]byte{9, 9, 9, 9},
		Color:    [4]byte{1, 2, 3, 4},
	}

	red := loc.Redacted("<redacted>")
	assert.Equal(t, "<redacted>", red.Name)
	assert.Equal(t, "<redacted>", red.Function)
	assert.Equal(t, "<redacted>", red.File)
	assert.Equal(t, loc.Line, red.Line)
	assert.Equal(t, loc.Color, red.Color)
}
