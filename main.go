package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/hashicorp/utredact/command"
	"github.com/hashicorp/utredact/version"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("utredact", version.GetVersion().SemanticVersion())
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"run":     command.RunCommandFactory(ui),
		"version": command.VersionCommandFactory(ui),
	}

	rc, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return rc
}
