// Package dockerapp describes invocations of the render tool (docker-app)
// and the deploy tool (docker-compose) as typed values.
package dockerapp

import (
	"context"
	"errors"

	"github.com/ruminaider/devdock/internal/runner"
)

var errNoCommand = errors.New("no command configured")

// Override is a render setting passed as "-s <Setting>=<Value>".
type Override struct {
	Setting string
	Value   string
}

// Disable returns the override that turns setting off.
func Disable(setting string) Override {
	return Override{Setting: setting, Value: "false"}
}

func (o Override) String() string {
	return o.Setting + "=" + o.Value
}

// RenderCommand renders Image with the given overrides.
type RenderCommand struct {
	Image     string
	Overrides []Override
}

// Args returns the render tool arguments.
func (c RenderCommand) Args() []string {
	args := []string{"render"}
	for _, o := range c.Overrides {
		args = append(args, "-s", o.String())
	}
	return append(args, c.Image)
}

// DeployCommand runs the deploy tool against a rendered descriptor file.
type DeployCommand struct {
	DescriptorPath string
	Project        string
	Args           []string
}

// Argv returns the deploy tool arguments.
func (c DeployCommand) Argv() []string {
	argv := []string{"-f", c.DescriptorPath, "-p", c.Project}
	return append(argv, c.Args...)
}

// Renderer runs the render tool and captures the descriptor it prints.
type Renderer struct {
	Runner runner.Runner
	// Command is the tool and any leading arguments, e.g. ["docker-app"].
	Command []string
}

// Render returns the rendered descriptor text.
func (r Renderer) Render(ctx context.Context, cmd RenderCommand) (string, error) {
	if len(r.Command) == 0 {
		return "", errNoCommand
	}
	args := append(append([]string{}, r.Command[1:]...), cmd.Args()...)
	return r.Runner.Capture(ctx, r.Command[0], args...)
}

// Deployer runs the deploy tool on the operator's terminal.
type Deployer struct {
	Runner runner.Runner
	// Command is the tool and any leading arguments, e.g. ["docker", "compose"].
	Command []string
}

// Deploy blocks until the deploy tool exits.
func (d Deployer) Deploy(ctx context.Context, cmd DeployCommand) error {
	if len(d.Command) == 0 {
		return errNoCommand
	}
	args := append(append([]string{}, d.Command[1:]...), cmd.Argv()...)
	return d.Runner.Inherit(ctx, d.Command[0], args...)
}
