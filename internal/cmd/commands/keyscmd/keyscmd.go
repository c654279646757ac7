package keyscmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "List the account's public keys"
}

func (c *Command) Help() string {
	return `Usage: sdc keys

  Lists the SSH public keys registered on the account.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("keys", flag.ExitOnError))
	c.clientFlags.Register(f)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, err := c.clientFlags.Client(c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	keys, err := client.ListKeys(context.Background())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing keys: %v", err))
		return 1
	}

	for _, key := range keys {
		c.UI.Output(fmt.Sprintf("%s %s", key.Name, key.Fingerprint))
	}
	return 0
}
