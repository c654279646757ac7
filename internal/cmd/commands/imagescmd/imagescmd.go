package imagescmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags

	flagName    string
	flagOS      string
	flagVersion string
}

func (c *Command) Synopsis() string {
	return "List available machine images"
}

func (c *Command) Help() string {
	return `Usage: sdc images

  Lists the images available for provisioning, optionally filtered
  server-side by name, OS, or version.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("images", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.StringVar(&c.flagName, "name", "", "Filter by image name")
	f.StringVar(&c.flagOS, "os", "", "Filter by operating system")
	f.StringVar(&c.flagVersion, "image-version", "", "Filter by image version")
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

	images, err := client.ListImages(context.Background(), &cloudapi.ImageListOptions{
		Name:    c.flagName,
		OS:      c.flagOS,
		Version: c.flagVersion,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing images: %v", err))
		return 1
	}

	for _, image := range images {
		c.UI.Output(fmt.Sprintf("%s %s %s %s", image.ID, image.Name, image.Version, image.OS))
	}
	return 0
}
