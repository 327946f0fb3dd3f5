package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/ruminaider/devdock/internal/commands"
	"github.com/ruminaider/devdock/internal/config"
	"github.com/ruminaider/devdock/internal/dockerapp"
	"github.com/ruminaider/devdock/internal/logging"
	"github.com/ruminaider/devdock/internal/paths"
	"github.com/ruminaider/devdock/internal/runner"
	"github.com/ruminaider/devdock/internal/settings"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// errUsage is returned when fewer than two positional arguments are given.
var errUsage = errors.New("usage")

var (
	configDirFlag string
	logLevelFlag  string
)

// isTerminal is swapped out in tests.
var isTerminal = func() bool { return term.IsTerminal(os.Stdin.Fd()) }

var rootCmd = &cobra.Command{
	Use:     "devdock [PROJECT-NAME] [APP-IMAGE] [DOCKER-COMPOSE-COMMAND...]",
	Short:   "Pick the services of a docker-app and run it with docker-compose",
	Long:    "devdock renders a docker-app image, lets you disable individual services, remembers that choice per project and starts the result with docker-compose.",
	Version: version,
	// Errors are reported once, in main.
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
}

func init() {
	// Everything after the project name belongs to docker-compose.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVar(&configDirFlag, "config-dir", "", "Directory for settings and rendered files (default $DEVDOCK_HOME or ~/.devdock)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error (default from config.yaml)")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  devdock [PROJECT-NAME] [APP-IMAGE]")
	fmt.Fprintln(w, "  devdock [PROJECT-NAME] [APP-IMAGE] [DOCKER-COMPOSE-COMMAND w/ flags and options]")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		printUsage(cmd.OutOrStdout())
		return errUsage
	}
	project, image, rest := args[0], args[1], args[2:]

	dir := configDirFlag
	if dir == "" {
		dir = paths.ConfigDir()
	}
	if err := config.EnsureDir(dir); err != nil {
		return err
	}
	cfg, err := config.Load(paths.ConfigFile(dir))
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger, closer, err := logging.New(paths.LogFile(dir), level)
	if err != nil {
		return err
	}
	defer closer.Close()

	r := runner.Exec{}
	orch := &commands.Orchestrator{
		Dir:         dir,
		Store:       settings.NewStore(paths.SettingsFile(dir)),
		Renderer:    dockerapp.Renderer{Runner: r, Command: strings.Fields(cfg.RenderCommand)},
		Deployer:    dockerapp.Deployer{Runner: r, Command: strings.Fields(cfg.DeployCommand)},
		DefaultArgs: cfg.DefaultDeployArgs,
		Logger:      logger,
	}

	opts := commands.LaunchOptions{Project: project, Image: image, Args: rest}
	if len(rest) == 0 {
		if isTerminal() {
			opts.Select = runSelector
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "stdin is not a terminal; using the saved selection")
		}
	}

	plan, err := orch.Plan(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if plan.DefaultAction {
		printPlan(cmd.OutOrStdout(), plan)
	}
	return orch.Launch(cmd.Context(), plan)
}

func main() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, huh.ErrUserAborted):
		os.Exit(0)
	case errors.Is(err, errUsage):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
