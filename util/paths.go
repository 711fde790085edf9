// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ErrPathConflict indicates the resolved output path refers to the input
// file without the user asking for an in-place rewrite.
var ErrPathConflict = errors.New("output path is the same as the input file; use -in-place to overwrite")

// redactedSuffix is appended to the input's stem when no explicit output
// path is given.
const redactedSuffix = ".redacted.utracy"

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding path %q: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", path, err)
	}
	return abs, nil
}

// stem returns the input's base name without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DeriveOutputPath returns the default output location for input: a sibling
// file named <stem>.redacted.utracy.
func DeriveOutputPath(input string) string {
	return filepath.Join(filepath.Dir(input), stem(input)+redactedSuffix)
}

// TempPath returns the scratch location for an in-place rewrite. It lives
// in the input's directory so the final rename never crosses a filesystem
// boundary, which is what keeps the replace atomic.
func TempPath(input string) string {
	name := fmt.Sprintf("%s.redact_tmp_%d.utracy", stem(input), os.Getpid())
	return filepath.Join(filepath.Dir(input), name)
}

// SamePath reports whether two paths refer to the same file. When both
// exist the check goes through os.SameFile so symlinks and hard links are
// caught; otherwise the absolutized paths are compared lexically.
func SamePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
