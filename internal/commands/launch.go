// Package commands composes the catalog, settings store, selector and
// external tools into the devdock launch flow.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ruminaider/devdock/internal/catalog"
	"github.com/ruminaider/devdock/internal/dockerapp"
	"github.com/ruminaider/devdock/internal/logging"
	"github.com/ruminaider/devdock/internal/paths"
	"github.com/ruminaider/devdock/internal/selection"
	"github.com/ruminaider/devdock/internal/settings"
)

// Renderer renders an application image into descriptor text.
type Renderer interface {
	Render(ctx context.Context, cmd dockerapp.RenderCommand) (string, error)
}

// Deployer runs the deploy tool against a descriptor file.
type Deployer interface {
	Deploy(ctx context.Context, cmd dockerapp.DeployCommand) error
}

// Selector lets the operator edit the initial state. It returns the final
// state, or an error (huh.ErrUserAborted when cancelled).
type Selector func(project string, initial selection.State) (selection.State, error)

// Orchestrator runs the launch flow for one config directory.
type Orchestrator struct {
	Dir         string
	Store       *settings.Store
	Renderer    Renderer
	Deployer    Deployer
	DefaultArgs []string
	Logger      *slog.Logger
}

// LaunchOptions describe one invocation.
type LaunchOptions struct {
	Project string
	Image   string
	// Args are passed to the deploy tool verbatim. When empty the operator
	// picks services and DefaultArgs are used.
	Args []string
	// Select is called when Args is empty. Nil keeps the persisted selection.
	Select Selector
}

// Plan is the outcome of selection: what will be rendered and deployed.
type Plan struct {
	Project    string
	Image      string
	Initial    selection.State
	Final      selection.State
	DeployArgs []string
	// DefaultAction is true when no deploy arguments were given.
	DefaultAction bool
	// Saved is true when the settings file was rewritten.
	Saved     bool
	Overrides []dockerapp.Override
	// Skipped lists disabled entries that have no setting to disable them with.
	Skipped []selection.Entry
}

// Prepare renders image without overrides and merges its catalog with the
// project's persisted disabled services.
func (o *Orchestrator) Prepare(ctx context.Context, project, image string) (selection.State, error) {
	o.logger().Debug("rendering catalog", "project", project, "image", image)
	descriptor, err := o.Renderer.Render(ctx, dockerapp.RenderCommand{Image: image})
	if err != nil {
		return nil, err
	}
	services, err := catalog.Extract([]byte(descriptor))
	if err != nil {
		return nil, err
	}
	disabled, err := o.Store.LoadProject(project)
	if err != nil {
		return nil, err
	}
	return selection.Merge(services, disabled)
}

// Plan prepares the initial state, runs the selector when no deploy
// arguments were given, and saves the selection if it changed.
func (o *Orchestrator) Plan(ctx context.Context, opts LaunchOptions) (*Plan, error) {
	initial, err := o.Prepare(ctx, opts.Project, opts.Image)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Project:    opts.Project,
		Image:      opts.Image,
		Initial:    initial,
		Final:      initial,
		DeployArgs: opts.Args,
	}

	if len(opts.Args) == 0 {
		plan.DefaultAction = true
		plan.DeployArgs = o.DefaultArgs
		if opts.Select != nil {
			final, err := opts.Select(opts.Project, initial)
			if err != nil {
				return nil, err
			}
			plan.Final = final
		}
		if selection.NeedsSave(initial, plan.Final) {
			if err := o.Store.SaveProject(opts.Project, plan.Final.DisabledNames()); err != nil {
				return nil, err
			}
			plan.Saved = true
			o.logger().Info("saved settings", "project", opts.Project, "disabled", plan.Final.DisabledNames())
		}
	}

	plan.Overrides, plan.Skipped = Overrides(plan.Final)
	for _, e := range plan.Skipped {
		o.logger().Warn("disabled service has no setting key", "project", opts.Project, "service", e.Name)
	}
	return plan, nil
}

// Launch renders the plan's image with its overrides, writes the
// descriptor file and runs the deploy tool. A non-zero exit from the deploy
// tool is logged, not returned.
func (o *Orchestrator) Launch(ctx context.Context, plan *Plan) error {
	o.logger().Info("rendering", "project", plan.Project, "image", plan.Image, "overrides", len(plan.Overrides))
	descriptor, err := o.Renderer.Render(ctx, dockerapp.RenderCommand{Image: plan.Image, Overrides: plan.Overrides})
	if err != nil {
		return err
	}

	path := paths.DescriptorFile(o.Dir, plan.Project)
	if err := writeDescriptor(path, descriptor); err != nil {
		return err
	}

	o.logger().Info("deploying", "project", plan.Project, "args", plan.DeployArgs)
	err = o.Deployer.Deploy(ctx, dockerapp.DeployCommand{
		DescriptorPath: path,
		Project:        plan.Project,
		Args:           plan.DeployArgs,
	})
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		o.logger().Warn("deploy tool exited with error", "project", plan.Project, "code", exitErr.ExitCode())
		return nil
	}
	return err
}

// Overrides returns one disable override per disabled entry with a setting.
// Disabled entries without a setting are returned as skipped.
func Overrides(s selection.State) ([]dockerapp.Override, []selection.Entry) {
	var overrides []dockerapp.Override
	var skipped []selection.Entry
	for _, e := range s.Disabled() {
		if e.Setting == "" {
			skipped = append(skipped, e)
			continue
		}
		overrides = append(overrides, dockerapp.Disable(e.Setting))
	}
	return overrides, skipped
}

func writeDescriptor(path, descriptor string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating descriptor dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(descriptor), 0644); err != nil {
		return fmt.Errorf("writing descriptor: %w", err)
	}
	return nil
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}
