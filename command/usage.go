// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/kr/text"
)

// maxLineLength is the maximum width of any line.
const maxLineLength int = 72

// Usage renders a usage slug followed by a consistently-formatted dump of
// the command's flags.
func Usage(txt string, flags *flag.FlagSet) string {
	out := new(bytes.Buffer)

	out.WriteString(strings.TrimSpace(txt))
	out.WriteString("\n\n")

	if flags != nil {
		fmt.Fprintf(out, "Command Options\n\n")
		flags.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(out, "  -%s\n%s\n\n", f.Name, wrapAtLength(f.Usage, 5))
		})
	}

	return strings.TrimRight(out.String(), "\n")
}

// wrapAtLength wraps the given text at the maxLineLength, taking into
// account any provided left padding.
func wrapAtLength(s string, pad int) string {
	wrapped := text.Wrap(s, maxLineLength-pad)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.Repeat(" ", pad) + line
	}
	return strings.Join(lines, "\n")
}
