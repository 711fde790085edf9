// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveOutputPath(t *testing.T) {
	tcs := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "plain capture",
			input:  filepath.Join("captures", "run1.utracy"),
			expect: filepath.Join("captures", "run1.redacted.utracy"),
		},
		{
			name:   "no extension",
			input:  filepath.Join("captures", "run1"),
			expect: filepath.Join("captures", "run1.redacted.utracy"),
		},
		{
			name:   "dotted stem keeps earlier dots",
			input:  filepath.Join("captures", "run.v2.utracy"),
			expect: filepath.Join("captures", "run.v2.redacted.utracy"),
		},
	}

	for _, tc := range tcs {
		assert.Equal(t, tc.expect, DeriveOutputPath(tc.input), tc.name)
	}
}

func TestTempPath(t *testing.T) {
	got := TempPath(filepath.Join("captures", "run1.utracy"))

	// Same directory as the input so the final rename is atomic.
	assert.Equal(t, "captures", filepath.Dir(got))
	assert.Contains(t, filepath.Base(got), "run1.redact_tmp_")
	assert.Contains(t, got, ".utracy")
	assert.NotEqual(t, filepath.Join("captures", "run1.utracy"), got)
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.utracy")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0644))

	same, err := SamePath(a, a)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = SamePath(a, filepath.Join(dir, "b.utracy"))
	require.NoError(t, err)
	assert.False(t, same)

	// Missing files still compare lexically.
	missing := filepath.Join(dir, "missing.utracy")
	same, err = SamePath(missing, missing)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestSamePath_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.utracy")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	link := filepath.Join(dir, "link.utracy")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %s", err)
	}

	same, err := SamePath(target, link)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestExpandPath(t *testing.T) {
	got, err := ExpandPath(filepath.Join("some", "relative", "path"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = ExpandPath("~/captures/run1.utracy")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "captures", "run1.utracy"), got)
}
