package machinescmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type WaitCommand struct {
	*base.Command

	clientFlags base.ClientFlags

	flagState    string
	flagInterval time.Duration
	flagTimeout  time.Duration
}

func (c *WaitCommand) Synopsis() string {
	return "Wait for a machine to reach a state"
}

func (c *WaitCommand) Help() string {
	return `Usage: sdc machine wait <machine-id>

  Polls the machine until it reaches the desired state or the timeout
  expires.` + c.Flags().Help()
}

func (c *WaitCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("machine wait", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.StringVar(&c.flagState, "state", "running", "State to wait for")
	f.DurationVar(&c.flagInterval, "interval", 3*time.Second, "Delay between polls")
	f.DurationVar(&c.flagTimeout, "timeout", 10*time.Minute, "Give up after this long")
	return f
}

func (c *WaitCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(f.Args()) != 1 {
		c.UI.Error("exactly one machine id is required")
		return 1
	}

	client, err := c.clientFlags.Client(c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.flagTimeout)
	defer cancel()

	m, err := client.GetMachine(ctx, cloudapi.ID(f.Args()[0]))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error fetching machine: %v", err))
		return 1
	}

	if err := m.WaitForState(ctx, c.flagState, c.flagInterval); err != nil {
		c.UI.Error(fmt.Sprintf("error waiting for machine: %v", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("%s %s %s", m.ID, m.Name, m.State))
	return 0
}
