// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

// Success indicates a successful command execution.
const Success int = 0

// The following error group is intended for issues within the command's execution.
const (
	// FlagParseError indicates that a command was unable to successfully parse the flags/arguments provided to it.
	FlagParseError int = iota + 16

	// ConfigError indicates that there was an error in the utredact configuration file.
	ConfigError

	// PathError indicates a problem with the input, output, or temporary file paths, including an output path
	// that resolves to the input file without -in-place.
	PathError

	// RedactError indicates that the streaming rewrite failed: a malformed or truncated capture, or an I/O fault
	// while reading or writing.
	RedactError

	// CommitError is returned when the rewrite itself succeeded but the output could not be made durable; e.g.
	// flushing the output file or renaming the temporary file over the input.
	CommitError
)
