package commands_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/ruminaider/devdock/internal/catalog"
	"github.com/ruminaider/devdock/internal/commands"
	"github.com/ruminaider/devdock/internal/dockerapp"
	"github.com/ruminaider/devdock/internal/paths"
	"github.com/ruminaider/devdock/internal/runner"
	"github.com/ruminaider/devdock/internal/selection"
	"github.com/ruminaider/devdock/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopDescriptor = `services:
  db:
    image: postgres
    x-devdock-description: Database
    x-devdock-setting-name: db.enabled
  cache:
    image: redis
    x-devdock-description: Cache
    x-devdock-setting-name: cache.enabled
  mail:
    image: mailhog
    x-devdock-description: Mail catcher
  web:
    image: shop/web
`

type fakeRenderer struct {
	calls  []dockerapp.RenderCommand
	output string
	// failOn makes the nth call (1-based) fail.
	failOn int
	err    error
}

func (f *fakeRenderer) Render(_ context.Context, cmd dockerapp.RenderCommand) (string, error) {
	f.calls = append(f.calls, cmd)
	if f.failOn == len(f.calls) {
		return "", f.err
	}
	return f.output, nil
}

type fakeDeployer struct {
	calls []dockerapp.DeployCommand
	// seen holds the descriptor file content at the time Deploy was called.
	seen string
	err  error
}

func (f *fakeDeployer) Deploy(_ context.Context, cmd dockerapp.DeployCommand) error {
	f.calls = append(f.calls, cmd)
	data, _ := os.ReadFile(cmd.DescriptorPath)
	f.seen = string(data)
	return f.err
}

func setupOrchestrator(t *testing.T, descriptor string) (*commands.Orchestrator, *fakeRenderer, *fakeDeployer) {
	t.Helper()
	dir := t.TempDir()
	r := &fakeRenderer{output: descriptor}
	d := &fakeDeployer{}
	return &commands.Orchestrator{
		Dir:         dir,
		Store:       settings.NewStore(paths.SettingsFile(dir)),
		Renderer:    r,
		Deployer:    d,
		DefaultArgs: []string{"up", "-d", "--remove-orphans"},
	}, r, d
}

func toggleByName(names ...string) commands.Selector {
	return func(_ string, s selection.State) (selection.State, error) {
		for i, e := range s {
			for _, n := range names {
				if e.Name == n {
					s = s.Toggle(i)
				}
			}
		}
		return s, nil
	}
}

func TestPrepare_MergesPersisted(t *testing.T) {
	o, r, _ := setupOrchestrator(t, shopDescriptor)
	require.NoError(t, o.Store.SaveProject("shop", []string{"db"}))

	s, err := o.Prepare(context.Background(), "shop", "acme/shop")
	require.NoError(t, err)
	assert.Equal(t, selection.State{
		{Name: "cache", Description: "Cache", Setting: "cache.enabled"},
		{Name: "db", Description: "Database", Setting: "db.enabled", Disabled: true},
		{Name: "mail", Description: "Mail catcher"},
	}, s)
	require.Len(t, r.calls, 1)
	assert.Empty(t, r.calls[0].Overrides)
	assert.Equal(t, "acme/shop", r.calls[0].Image)
}

func TestPrepare_Errors(t *testing.T) {
	t.Run("malformed descriptor", func(t *testing.T) {
		o, _, _ := setupOrchestrator(t, "version: 3\n")
		_, err := o.Prepare(context.Background(), "shop", "img")
		assert.ErrorIs(t, err, catalog.ErrMalformedDescriptor)
	})
	t.Run("corrupt store", func(t *testing.T) {
		o, _, _ := setupOrchestrator(t, shopDescriptor)
		require.NoError(t, os.WriteFile(o.Store.Path, []byte("{"), 0644))
		_, err := o.Prepare(context.Background(), "shop", "img")
		assert.ErrorIs(t, err, settings.ErrCorruptStore)
	})
	t.Run("render failure", func(t *testing.T) {
		o, r, _ := setupOrchestrator(t, shopDescriptor)
		r.failOn = 1
		r.err = &runner.CommandError{Name: "docker-app", Output: "unknown image"}
		_, err := o.Prepare(context.Background(), "shop", "img")
		assert.EqualError(t, err, "unknown image")
	})
}

func TestPlan_EmptyCatalogStopsEarly(t *testing.T) {
	o, r, d := setupOrchestrator(t, "services:\n  web:\n    image: nginx\n")
	called := false
	_, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Select: func(string, selection.State) (selection.State, error) {
			called = true
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, selection.ErrEmptyCatalog)
	assert.False(t, called)
	assert.Len(t, r.calls, 1)
	assert.Empty(t, d.calls)
}

func TestPlan_InteractiveSavesChanges(t *testing.T) {
	o, _, _ := setupOrchestrator(t, shopDescriptor)
	require.NoError(t, o.Store.Save(settings.Disabled{"other": {"queue"}}))

	plan, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Select:  toggleByName("db", "mail"),
	})
	require.NoError(t, err)

	assert.True(t, plan.DefaultAction)
	assert.True(t, plan.Saved)
	assert.Equal(t, []string{"up", "-d", "--remove-orphans"}, plan.DeployArgs)
	assert.Equal(t, []dockerapp.Override{dockerapp.Disable("db.enabled")}, plan.Overrides)
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "mail", plan.Skipped[0].Name)

	all, err := o.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings.Disabled{"other": {"queue"}, "shop": {"db", "mail"}}, all)
}

func TestPlan_NoNetChangeSkipsSave(t *testing.T) {
	o, _, _ := setupOrchestrator(t, shopDescriptor)
	require.NoError(t, o.Store.SaveProject("shop", []string{"db"}))
	before, err := os.Stat(o.Store.Path)
	require.NoError(t, err)

	plan, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Select:  toggleByName("cache", "cache"),
	})
	require.NoError(t, err)
	assert.False(t, plan.Saved)

	after, err := os.Stat(o.Store.Path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestPlan_CancelWritesNothing(t *testing.T) {
	o, _, d := setupOrchestrator(t, shopDescriptor)
	_, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Select: func(string, selection.State) (selection.State, error) {
			return nil, huh.ErrUserAborted
		},
	})
	assert.ErrorIs(t, err, huh.ErrUserAborted)
	assert.NoFileExists(t, o.Store.Path)
	assert.Empty(t, d.calls)
}

func TestPlan_PassthroughSkipsSelector(t *testing.T) {
	o, _, _ := setupOrchestrator(t, shopDescriptor)
	require.NoError(t, o.Store.SaveProject("shop", []string{"cache"}))
	data, err := os.ReadFile(o.Store.Path)
	require.NoError(t, err)

	plan, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Args:    []string{"logs", "-f"},
		Select: func(string, selection.State) (selection.State, error) {
			t.Fatal("selector must not run when deploy args are given")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.False(t, plan.DefaultAction)
	assert.False(t, plan.Saved)
	assert.Equal(t, []string{"logs", "-f"}, plan.DeployArgs)
	assert.Equal(t, []dockerapp.Override{dockerapp.Disable("cache.enabled")}, plan.Overrides)

	after, err := os.ReadFile(o.Store.Path)
	require.NoError(t, err)
	assert.Equal(t, data, after)
}

func TestPlan_NilSelectorKeepsPersisted(t *testing.T) {
	o, _, _ := setupOrchestrator(t, shopDescriptor)
	require.NoError(t, o.Store.SaveProject("shop", []string{"db"}))

	plan, err := o.Plan(context.Background(), commands.LaunchOptions{Project: "shop", Image: "img"})
	require.NoError(t, err)
	assert.True(t, plan.DefaultAction)
	assert.False(t, plan.Saved)
	assert.Equal(t, plan.Initial, plan.Final)
}

func TestLaunch_RendersWritesThenDeploys(t *testing.T) {
	o, r, d := setupOrchestrator(t, shopDescriptor)
	plan, err := o.Plan(context.Background(), commands.LaunchOptions{
		Project: "shop",
		Image:   "img",
		Select:  toggleByName("db", "cache"),
	})
	require.NoError(t, err)

	r.output = "services:\n  web: {}\n"
	require.NoError(t, o.Launch(context.Background(), plan))

	require.Len(t, r.calls, 2)
	assert.Equal(t, dockerapp.RenderCommand{
		Image:     "img",
		Overrides: []dockerapp.Override{dockerapp.Disable("cache.enabled"), dockerapp.Disable("db.enabled")},
	}, r.calls[1])

	path := filepath.Join(o.Dir, "shop.yml")
	require.Len(t, d.calls, 1)
	assert.Equal(t, dockerapp.DeployCommand{
		DescriptorPath: path,
		Project:        "shop",
		Args:           []string{"up", "-d", "--remove-orphans"},
	}, d.calls[0])
	assert.Equal(t, "services:\n  web: {}\n", d.seen, "descriptor must be on disk before deploy starts")
}

func TestLaunch_RenderFailureSkipsDeploy(t *testing.T) {
	o, r, d := setupOrchestrator(t, shopDescriptor)
	plan, err := o.Plan(context.Background(), commands.LaunchOptions{Project: "shop", Image: "img", Args: []string{"ps"}})
	require.NoError(t, err)

	r.failOn = 2
	r.err = &runner.CommandError{Name: "docker-app", Output: "invalid setting db.enabled"}
	err = o.Launch(context.Background(), plan)
	assert.EqualError(t, err, "invalid setting db.enabled")
	assert.Empty(t, d.calls)
	assert.NoFileExists(t, filepath.Join(o.Dir, "shop.yml"))
}

func TestLaunch_DeployExitCodeIgnored(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	exitErr := exec.Command("sh", "-c", "exit 4").Run()
	require.Error(t, exitErr)

	o, _, d := setupOrchestrator(t, shopDescriptor)
	d.err = &runner.CommandError{Name: "docker-compose", Err: exitErr}
	plan, err := o.Plan(context.Background(), commands.LaunchOptions{Project: "shop", Image: "img", Args: []string{"ps"}})
	require.NoError(t, err)
	assert.NoError(t, o.Launch(context.Background(), plan))
}

func TestLaunch_DeployStartFailure(t *testing.T) {
	o, _, d := setupOrchestrator(t, shopDescriptor)
	d.err = &runner.CommandError{Name: "docker-compose", Err: errors.New("executable file not found")}
	plan, err := o.Plan(context.Background(), commands.LaunchOptions{Project: "shop", Image: "img", Args: []string{"ps"}})
	require.NoError(t, err)
	assert.Error(t, o.Launch(context.Background(), plan))
}

func TestOverrides(t *testing.T) {
	s := selection.State{
		{Name: "a", Setting: "a.on", Disabled: true},
		{Name: "b", Setting: "b.on"},
		{Name: "c", Disabled: true},
		{Name: "d", Setting: "d.on", Disabled: true},
	}
	overrides, skipped := commands.Overrides(s)
	assert.Equal(t, []dockerapp.Override{dockerapp.Disable("a.on"), dockerapp.Disable("d.on")}, overrides)
	require.Len(t, skipped, 1)
	assert.Equal(t, "c", skipped[0].Name)

	overrides, skipped = commands.Overrides(selection.State{{Name: "x", Setting: "x"}})
	assert.Empty(t, overrides)
	assert.Empty(t, skipped)
}
