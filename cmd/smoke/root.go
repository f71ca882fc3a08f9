package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacqt4/PlaywrightTutorial/internal/adapter/scenario"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/di"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/fixture"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/env"
	"github.com/jacqt4/PlaywrightTutorial/internal/testsite"
)

// errScenariosFailed is returned after the summary was printed, so main
// only has to set the exit status.
var errScenariosFailed = errors.New("one or more scenarios failed")

type runFlags struct {
	driver        string
	headless      bool
	screenshotDir string
	recordVideo   bool
	trace         bool
	live          bool
	install       bool
	accessLog     bool
	timeout       time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "smoke",
		Short: "Browser smoke scenarios for search engines and docs sites",
		Long: `smoke runs the end-to-end scenarios of the suite outside "go test".

By default scenarios target a local stand-in site started in-process;
pass --live to hit the public sites instead. Settings come from .env,
.env.$APP_ENV and the environment, and flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(newListCmd(out), newRunCmd(out))
	return root
}

func newListCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, s := range scenario.All(scenario.LiveTargets()) {
				fmt.Fprintf(w, "%s\t%s\n", s.Name(), s.Description())
			}
			return w.Flush()
		},
	}
}

func newRunCmd(out io.Writer) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			envs := env.NewEnvService(".")
			cfg := fixture.ConfigFromEnv(envs)
			applyFlags(cmd, f, &cfg)
			return runScenarios(cmd.Context(), out, cfg, f, siteOptions(cmd, f, envs), args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.driver, "driver", "playwright", "Browser driver: playwright, rod or static")
	flags.BoolVar(&f.headless, "headless", true, "Run the browser without a window")
	flags.StringVar(&f.screenshotDir, "screenshot-dir", "", "Directory for screenshots (default screenshots/)")
	flags.BoolVar(&f.recordVideo, "record-video", false, "Record a video per scenario")
	flags.BoolVar(&f.trace, "trace", false, "Record a trace archive per scenario")
	flags.BoolVar(&f.live, "live", false, "Target the public sites instead of the local stand-in")
	flags.BoolVar(&f.install, "install", false, "Download the playwright driver and browser first")
	flags.BoolVar(&f.accessLog, "access-log", false, "Log requests to the local stand-in site as JSON")
	flags.DurationVar(&f.timeout, "timeout", 10*time.Minute, "Overall deadline for the run")
	return cmd
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, f runFlags, cfg *fixture.Config) {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = f.driver
	}
	if flags.Changed("headless") {
		cfg.Headless = f.headless
	}
	if flags.Changed("screenshot-dir") {
		cfg.ScreenshotDir = f.screenshotDir
	}
	if flags.Changed("record-video") {
		cfg.RecordVideo = f.recordVideo
	}
	if flags.Changed("trace") {
		cfg.Trace = f.trace
	}
}

// siteOptions configures the local stand-in site; --access-log wins over
// the environment.
func siteOptions(cmd *cobra.Command, f runFlags, envs output.ConfigPort) testsite.Options {
	accessLog := envs.GetBool(testsite.EnvAccessLog, false)
	if cmd.Flags().Changed("access-log") {
		accessLog = f.accessLog
	}
	return testsite.Options{AccessLog: accessLog}
}

func runScenarios(parent context.Context, out io.Writer, cfg fixture.Config, f runFlags, site testsite.Options, names []string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	targets := scenario.LiveTargets()
	if !f.live {
		srv := testsite.Start(site)
		defer srv.Close()
		targets = scenario.LocalTargets(srv.URL)
	}

	container, err := di.NewContainer(ctx, di.Config{
		Fixture:         cfg,
		Targets:         targets,
		LogName:         "smoke",
		InstallBrowsers: f.install,
	})
	if err != nil {
		return err
	}
	defer container.Close()

	container.Logger.Info("Run started", "driver", cfg.Driver, "live", f.live, "scenarios", names)

	results, err := container.Runner.RunAll(ctx, names)
	printSummary(out, results)
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.Passed() {
			return errScenariosFailed
		}
	}
	return nil
}

func printSummary(out io.Writer, results []*entity.ScenarioResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	failed := 0
	for _, r := range results {
		detail := ""
		if r.Err != nil {
			failed++
			detail = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Status, r.Name, r.Duration.Round(time.Millisecond), detail)
		for _, a := range r.Artifacts {
			fmt.Fprintf(w, "\t\t\t%s\n", a)
		}
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%d passed, %d failed\n", len(results)-failed, failed)
}
