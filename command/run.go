// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp/utredact/hcl"
	"github.com/hashicorp/utredact/redact"
	"github.com/hashicorp/utredact/trace"
	"github.com/hashicorp/utredact/util"
)

// ioBufferSize is the capacity of the buffered regions wrapped around the
// input and output files. Captures routinely run to gigabytes, so the
// rewrite amortizes syscalls over big chunks; the value is a tuning knob,
// not a correctness constraint.
const ioBufferSize = 8 * 1024 * 1024

var _ cli.Command = &RunCommand{}

type RunCommand struct {
	ui    cli.Ui
	flags *flag.FlagSet

	// Output selection; -in-place and -output are mutually exclusive.
	output  string
	inPlace bool

	// dryrun reports intent without writing anything.
	dryrun bool

	// Redaction policy inputs
	fileMarkers []string
	fnMarkers   []string
	token       string

	// HCL file location
	config string
}

func (c *RunCommand) init() {
	const (
		outputUsageText      = "Path the redacted copy should be written to. Defaults to <stem>.redacted.utracy next to the input file."
		inPlaceUsageText     = "Overwrite the input file, writing to a temporary file in the same directory and atomically renaming it over the input. Mutually exclusive with -output."
		dryrunUsageText      = "Report the source locations that would be redacted without writing any output."
		fileMarkersUsageText = "Comma-separated substrings matched case-insensitively against each srcloc file path."
		fnMarkersUsageText   = "Comma-separated substrings matched case-insensitively against each srcloc function name."
		tokenUsageText       = "Replacement literal stored in the string fields of matched records."
		configUsageText      = "Path to HCL configuration file"
	)

	// flag.ContinueOnError allows flag.Parse to return an error if one comes up, rather than doing an `os.Exit(2)`
	// on its own.
	c.flags = flag.NewFlagSet("run", flag.ContinueOnError)

	c.flags.StringVar(&c.output, "output", "", outputUsageText)
	c.flags.StringVar(&c.output, "o", "", "Shorthand for -output")
	c.flags.BoolVar(&c.inPlace, "in-place", false, inPlaceUsageText)
	c.flags.BoolVar(&c.dryrun, "dry-run", false, dryrunUsageText)
	c.flags.Var(&CSVFlag{&c.fileMarkers}, "file-markers", fileMarkersUsageText)
	c.flags.Var(&CSVFlag{&c.fnMarkers}, "fn-markers", fnMarkersUsageText)
	c.flags.StringVar(&c.token, "token", "", tokenUsageText)
	c.flags.StringVar(&c.config, "config", "", configUsageText)

	// When invalid flags are provided, Go will output a usage message of its own. If we direct our flag set to
	// io.Discard, it will effectively be hidden, allowing us to print our own Help message upon failure.
	c.flags.SetOutput(io.Discard)
}

// NewRunCommand produces a new *command pointer, initialized for use in a CLI application.
func NewRunCommand(ui cli.Ui) *RunCommand {
	c := &RunCommand{ui: ui}
	c.init()
	return c
}

// RunCommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *command.
func RunCommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return NewRunCommand(ui), nil
	}
}

// Help provides help text to users who pass in the --help flag or who enter invalid options.
func (c *RunCommand) Help() string {
	helpText := `Usage: utredact run [options] <file>

Rewrites the srcloc table of a .utracy capture, replacing the name, function,
and file fields of any source location that matches a secrecy marker. The rest
of the capture is copied through byte for byte.
`

	return Usage(helpText, c.flags)
}

// Synopsis provides a brief description of the command, for inclusion in the application's primary --help.
func (c *RunCommand) Synopsis() string {
	return "Redact secret source locations from a .utracy capture"
}

// Run executes the command.
func (c *RunCommand) Run(args []string) int {
	if err := c.parseFlags(args); err != nil {
		// Output the specific error to help the user understand what went wrong.
		c.ui.Warn(err.Error())
		// Since there was an issue in input, let's show our Help to try and assist the user.
		c.ui.Warn(c.Help())
		return FlagParseError
	}
	if c.flags.NArg() != 1 {
		c.ui.Warn("run expects exactly one input file")
		c.ui.Warn(c.Help())
		return FlagParseError
	}
	if c.inPlace && c.output != "" {
		c.ui.Warn("-in-place and -output are mutually exclusive")
		c.ui.Warn(c.Help())
		return FlagParseError
	}

	l := configureLogging("utredact")

	policy, err := c.buildPolicy(l)
	if err != nil {
		l.Error("Failed to load configuration", "config", c.config, "error", err)
		return ConfigError
	}

	input, err := util.ExpandPath(c.flags.Arg(0))
	if err != nil {
		c.ui.Error(err.Error())
		return PathError
	}
	if _, err := os.Stat(input); err != nil {
		c.ui.Error(fmt.Sprintf("input file not found: %s", input))
		return PathError
	}

	dest, err := c.resolveOutput(input)
	if err != nil {
		c.ui.Error(err.Error())
		return PathError
	}
	l.Debug("resolved paths", "input", input, "output", dest, "in-place", c.inPlace, "dry-run", c.dryrun)

	names, rc := c.rewrite(l, input, dest, policy)
	if rc != Success {
		return rc
	}

	c.writeSummary(names, input, dest)
	return Success
}

// resolveOutput decides where the rewrite should land. Dry runs get no
// destination at all; in-place runs get a temp file next to the input that
// is renamed over it after a successful rewrite. An explicit or derived
// output path that points back at the input is rejected so the only way to
// clobber the original is an explicit -in-place.
func (c *RunCommand) resolveOutput(input string) (string, error) {
	if c.dryrun {
		return "", nil
	}
	if c.inPlace {
		return util.TempPath(input), nil
	}

	dest := c.output
	if dest == "" {
		dest = util.DeriveOutputPath(input)
	}
	dest, err := util.ExpandPath(dest)
	if err != nil {
		return "", err
	}
	same, err := util.SamePath(input, dest)
	if err != nil {
		return "", err
	}
	if same {
		return "", fmt.Errorf("%w: %s", util.ErrPathConflict, dest)
	}
	return dest, nil
}

// rewrite streams input through the codec into dest. For dry runs dest is
// empty and nothing is written. For in-place runs dest is the temp file,
// which is removed on every failure path and only ever renamed over the
// input after the rewrite has been flushed and synced.
func (c *RunCommand) rewrite(l hclog.Logger, input, dest string, policy redact.Policy) ([]string, int) {
	in, err := os.Open(input)
	if err != nil {
		c.ui.Error(fmt.Sprintf("opening input: %s", err))
		return nil, PathError
	}
	defer in.Close()
	r := bufio.NewReaderSize(in, ioBufferSize)

	if c.dryrun {
		names, err := trace.Redact(r, io.Discard, policy, true)
		if err != nil {
			c.ui.Error(err.Error())
			return nil, RedactError
		}
		return names, Success
	}

	out, err := os.Create(dest)
	if err != nil {
		c.ui.Error(fmt.Sprintf("creating output: %s", err))
		return nil, PathError
	}
	committed := false
	defer func() {
		out.Close()
		if c.inPlace && !committed {
			// The temp file must never survive a failed run; the worst
			// allowed outcome is an untouched input and no temp.
			if rmErr := os.Remove(dest); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				l.Warn("failed to remove temporary file", "path", dest, "error", rmErr)
			}
		}
	}()

	w := bufio.NewWriterSize(out, ioBufferSize)
	names, err := trace.Redact(r, w, policy, false)
	if err != nil {
		c.ui.Error(err.Error())
		return nil, RedactError
	}
	if err := w.Flush(); err != nil {
		c.ui.Error(fmt.Sprintf("flushing output: %s", err))
		return nil, CommitError
	}

	if c.inPlace {
		// Make the temp durable before it replaces the input, then count on
		// the same-directory rename being atomic at the filesystem level.
		if err := out.Sync(); err != nil {
			c.ui.Error(fmt.Sprintf("syncing output: %s", err))
			return nil, CommitError
		}
		if err := out.Close(); err != nil {
			c.ui.Error(fmt.Sprintf("closing output: %s", err))
			return nil, CommitError
		}
		if err := os.Rename(dest, input); err != nil {
			c.ui.Error(fmt.Sprintf("renaming temp file over %s: %s", input, err))
			return nil, CommitError
		}
		committed = true
	}
	return names, Success
}

// writeSummary reports the outcome of the run through the UI.
func (c *RunCommand) writeSummary(names []string, input, dest string) {
	if c.dryrun {
		if len(names) == 0 {
			c.ui.Output("Dry run: no source locations would be redacted.")
			return
		}
		c.ui.Output(fmt.Sprintf("Dry run: would redact %d source locations:", len(names)))
		for _, n := range names {
			c.ui.Output("  " + n)
		}
		return
	}

	if len(names) == 0 {
		c.ui.Output("No source locations were redacted.")
	} else {
		c.ui.Output(fmt.Sprintf("Redacted %d source locations.", len(names)))
	}
	if c.inPlace {
		c.ui.Output("Output: " + input)
	} else {
		c.ui.Output("Output: " + dest)
	}
}

// buildPolicy layers the redaction configuration: built-in defaults, then
// the HCL file, then flags. Flags always win.
func (c *RunCommand) buildPolicy(l hclog.Logger) (redact.Policy, error) {
	fileMarkers := redact.DefaultFileMarkers
	fnMarkers := redact.DefaultFnMarkers
	token := ""

	if c.config != "" {
		cfg, err := hcl.Parse(c.config)
		if err != nil {
			return redact.Policy{}, err
		}
		l.Debug("HCL config is", "hcl", fmt.Sprintf("%+v", cfg))
		if cfg.Redact != nil {
			if cfg.Redact.FileMarkers != nil {
				fileMarkers = cfg.Redact.FileMarkers
			}
			if cfg.Redact.FnMarkers != nil {
				fnMarkers = cfg.Redact.FnMarkers
			}
			token = cfg.Redact.Token
		}
	}

	if c.fileMarkers != nil {
		fileMarkers = dropEmpty(c.fileMarkers)
	}
	if c.fnMarkers != nil {
		fnMarkers = dropEmpty(c.fnMarkers)
	}
	if c.token != "" {
		token = c.token
	}

	return redact.NewPolicy(fileMarkers, fnMarkers, token), nil
}

// dropEmpty strips empty entries a trailing comma or an empty flag value
// would otherwise smuggle in; an empty marker is a substring of everything.
func dropEmpty(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// configureLogging takes a logger name, sets the default configuration, grabs the LOG_LEVEL from our ENV vars, and
// returns a configured and usable logger.
func configureLogging(loggerName string) hclog.Logger {
	// Create logger, set default and log level
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  loggerName,
		Color: hclog.AutoColor,
	})
	hclog.SetDefault(appLogger)
	if logStr := os.Getenv("LOG_LEVEL"); logStr != "" {
		if level := hclog.LevelFromString(logStr); level != hclog.NoLevel {
			appLogger.SetLevel(level)
			appLogger.Debug("Logger configuration change", "LOG_LEVEL", hclog.Fmt("%s", logStr))
		}
	}
	return hclog.Default()
}

type CSVFlag struct {
	Values *[]string
}

func (s CSVFlag) String() string {
	if s.Values == nil {
		return ""
	}
	return strings.Join(*s.Values, ",")
}

func (s CSVFlag) Set(v string) error {
	*s.Values = strings.Split(v, ",")
	return nil
}

func (c *RunCommand) parseFlags(args []string) error {
	return c.flags.Parse(args)
}
