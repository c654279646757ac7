package machinescmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type CreateCommand struct {
	*base.Command

	clientFlags base.ClientFlags

	flagName         string
	flagPackage      string
	flagImage        string
	flagDataset      string
	flagMetadataFile string
	flagBootScript   string
	flagNetwork      stringSliceFlag
	flagTags         stringMapFlag
	flagWait         bool
	flagWaitTimeout  time.Duration
}

// stringSliceFlag collects repeated flag values.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return fmt.Sprintf("%v", []string(*s))
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func (c *CreateCommand) Synopsis() string {
	return "Provision a new machine"
}

func (c *CreateCommand) Help() string {
	return `Usage: sdc machine create

  Provisions a machine. Every option is optional; the datacenter
  assigns defaults for anything omitted. Metadata can be supplied as a
  YAML file of key/value pairs via -metadata-file.` + c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("machine create", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.StringVar(&c.flagName, "name", "", "Machine name")
	f.StringVar(&c.flagPackage, "package", "", "Package name or ID")
	f.StringVar(&c.flagImage, "image", "", "Image ID")
	f.StringVar(&c.flagDataset, "dataset", "", "Dataset ID or URN (ignored when -image is set)")
	f.StringVar(&c.flagMetadataFile, "metadata-file", "", "YAML file of metadata key/value pairs")
	f.StringVar(&c.flagBootScript, "boot-script", "", "Local script uploaded as the boot user-script")
	f.Var(&c.flagNetwork, "network", "Network ID to attach (repeatable)")
	f.Var(&c.flagTags, "tag", "Tag as key=value (repeatable)")
	f.BoolVar(&c.flagWait, "wait", false, "Block until the machine reaches the running state")
	f.DurationVar(&c.flagWaitTimeout, "wait-timeout", 10*time.Minute, "Give up waiting after this long")
	return f
}

func loadMetadataFile(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	var metadata map[string]interface{}
	if err := yaml.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("parsing metadata file: %w", err)
	}
	return metadata, nil
}

func (c *CreateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	opts := &cloudapi.CreateMachineOptions{
		Name:           c.flagName,
		Tags:           c.flagTags,
		Networks:       c.flagNetwork,
		BootScriptPath: c.flagBootScript,
	}
	if c.flagPackage != "" {
		opts.Package = cloudapi.ID(c.flagPackage)
	}
	if c.flagImage != "" {
		opts.Image = cloudapi.ID(c.flagImage)
	}
	if c.flagDataset != "" {
		opts.Dataset = cloudapi.ID(c.flagDataset)
	}
	if c.flagMetadataFile != "" {
		metadata, err := loadMetadataFile(c.flagMetadataFile)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		opts.Metadata = metadata
	}

	client, err := c.clientFlags.Client(c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx := context.Background()
	m, err := client.CreateMachine(ctx, opts)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating machine: %v", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("%s %s %s", m.ID, m.Name, m.State))

	if !c.flagWait {
		return 0
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.flagWaitTimeout)
	defer cancel()
	if err := m.WaitForState(waitCtx, "running", 3*time.Second); err != nil {
		c.UI.Error(fmt.Sprintf("error waiting for machine: %v", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("%s %s %s", m.ID, m.Name, m.State))
	return 0
}
