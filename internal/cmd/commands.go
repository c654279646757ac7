package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/accountcmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/datacenterscmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/imagescmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/keyscmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/machinescmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/packagescmd"
	"github.com/smartdc-forge/smartdc/internal/cmd/commands/versioncmd"
)

// Commands is the mapping of subcommand names to factories.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCommand := &base.Command{
		UI:  ui,
		Log: log,
	}

	Commands = map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: baseCommand}, nil
		},
		"account": func() (cli.Command, error) {
			return &accountcmd.Command{Command: baseCommand}, nil
		},
		"datacenters": func() (cli.Command, error) {
			return &datacenterscmd.Command{Command: baseCommand}, nil
		},
		"keys": func() (cli.Command, error) {
			return &keyscmd.Command{Command: baseCommand}, nil
		},
		"images": func() (cli.Command, error) {
			return &imagescmd.Command{Command: baseCommand}, nil
		},
		"packages": func() (cli.Command, error) {
			return &packagescmd.Command{Command: baseCommand}, nil
		},
		"machines": func() (cli.Command, error) {
			return &machinescmd.ListCommand{Command: baseCommand}, nil
		},
		"machine": func() (cli.Command, error) {
			return &machinescmd.Command{Command: baseCommand}, nil
		},
		"machine create": func() (cli.Command, error) {
			return &machinescmd.CreateCommand{Command: baseCommand}, nil
		},
		"machine wait": func() (cli.Command, error) {
			return &machinescmd.WaitCommand{Command: baseCommand}, nil
		},
		"machine delete": func() (cli.Command, error) {
			return &machinescmd.DeleteCommand{Command: baseCommand}, nil
		},
	}
}
