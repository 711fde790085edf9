//go:build functional

// end to end test
// expects `utredact` to be built and in PATH

package main_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/utredact/trace"
)

// buildFixture writes a small capture with one secret srcloc.
func buildFixture(t *testing.T, dir string) (path string, original []byte) {
	t.Helper()

	header := make([]byte, trace.HeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], trace.Signature)
	binary.LittleEndian.PutUint32(header[8:12], trace.Version)

	buf := new(bytes.Buffer)
	buf.Write(header)

	locs := []trace.SourceLocation{
		{Name: "zone", Function: "compute", File: "/src/app.cpp"},
		{Name: "zone", Function: "load_secret_key", File: "/src/app.cpp"},
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(locs)))
	buf.Write(count[:])
	for _, loc := range locs {
		require.NoError(t, loc.Encode(buf))
	}
	buf.WriteString("event stream tail")

	path = filepath.Join(dir, "fixture.utracy")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path, buf.Bytes()
}

func TestFunctional(t *testing.T) {
	testTable := map[string]struct {
		flags    []string // provided to utredact run, before the input path
		outFiles []string // asserted to exist in the fixture dir afterwards
	}{
		"derived output": {
			outFiles: []string{"fixture.utracy", "fixture.redacted.utracy"},
		},
		"explicit output": {
			flags:    []string{"-o", "scrubbed.utracy"},
			outFiles: []string{"fixture.utracy", "scrubbed.utracy"},
		},
		"in-place": {
			flags:    []string{"-in-place"},
			outFiles: []string{"fixture.utracy"},
		},
		"dry run": {
			flags:    []string{"-dry-run"},
			outFiles: []string{"fixture.utracy"},
		},
	}

	for name, tc := range testTable {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			input, _ := buildFixture(t, dir)

			args := append([]string{"run"}, tc.flags...)
			args = append(args, input)
			cmd := exec.Command("utredact", args...)
			cmd.Dir = dir
			out, err := cmd.CombinedOutput()
			require.NoError(t, err, string(out))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.ElementsMatch(t, tc.outFiles, names)

			assert.Contains(t, string(out), "1 source location")
		})
	}
}

func TestFunctional_Version(t *testing.T) {
	out, err := exec.Command("utredact", "version").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), "utredact v")
}
