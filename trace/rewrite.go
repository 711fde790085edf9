package trace

import (
	"fmt"
	"io"

	"github.com/hashicorp/utredact/redact"
)

// copyBufferSize bounds the scratch space used to stream the event tail.
// The tail can be arbitrarily large, so it is never materialized whole.
const copyBufferSize = 8 * 1024 * 1024

// Redact streams one capture from r to w, rewriting the srcloc table and
// passing everything else through unchanged. Records matched by the policy
// have their name, function, and file fields replaced with the policy
// token; line and color are copied byte for byte.
//
// The returned slice holds the original function names of the redacted
// records in table order, and is computed in dry-run mode too. With dryrun
// set, nothing is written to w and the tail is not consumed: the header
// and table are still fully read and validated, but the run is free of
// output-side effects and of cost proportional to the tail.
//
// The first error from any stage aborts the rewrite; there is no partial
// success.
func Redact(r io.Reader, w io.Writer, policy redact.Policy, dryrun bool) ([]string, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if !dryrun {
		if err := hdr.Encode(w); err != nil {
			return nil, err
		}
	}

	count, err := readUint32(r, "reading srcloc count")
	if err != nil {
		return nil, err
	}
	if !dryrun {
		if err := writeUint32(w, count, "writing srcloc count"); err != nil {
			return nil, err
		}
	}

	// Every record is visited; a match never short-circuits the loop
	// because the table must be re-encoded in full either way.
	var redacted []string
	for i := uint32(0); i < count; i++ {
		loc, err := DecodeSourceLocation(r)
		if err != nil {
			return nil, fmt.Errorf("srcloc %d: %w", i, err)
		}
		if policy.Match(loc.Function, loc.File) {
			redacted = append(redacted, loc.Function)
			loc = loc.Redacted(policy.Token())
		}
		if !dryrun {
			if err := loc.Encode(w); err != nil {
				return nil, fmt.Errorf("srcloc %d: %w", i, err)
			}
		}
	}

	if !dryrun {
		buf := make([]byte, copyBufferSize)
		if _, err := io.CopyBuffer(w, r, buf); err != nil {
			return nil, fmt.Errorf("copying event stream: %w", err)
		}
	}
	return redacted, nil
}
