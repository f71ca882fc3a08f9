// Package fixture owns the per-test browser triple: one session, one
// isolated context and one page, acquired in that order and released in
// reverse.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/artifacts"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/logger"
)

var _ output.ScenarioEnv = (*Fixture)(nil)

// Setup stages reported by SetupError.
const (
	StageLaunch  = "launch"
	StageContext = "context"
	StagePage    = "page"
)

// SetupError is an infrastructure failure: the browser could not be
// brought up, so no test body ran.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("fixture setup failed at %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Suite is what a group of tests shares: the driver, the run
// configuration and an optional screenshot directory override.
type Suite struct {
	Driver        output.Driver
	Config        Config
	ScreenshotDir string
	Log           output.LoggerPort
}

type Fixture struct {
	RunID string
	Name  string

	Session output.Session
	Context output.BrowserContext
	Page    output.Page

	cfg           Config
	screenshotDir string
	log           output.LoggerPort
	stack         Stack

	mu        sync.Mutex
	artifacts []string
	torn      bool
}

// ForTest sets up a fixture for t and tears it down in t.Cleanup. A setup
// failure stops the test as an infrastructure error.
func ForTest(t testing.TB, suite Suite) *Fixture {
	t.Helper()

	log := suite.Log
	if log == nil {
		log = logger.NewTestLogger(t)
	}
	cfg := suite.Config
	cfg.ScreenshotDir = ResolveScreenshotDir(cfg.ScreenshotDir, suite.ScreenshotDir)

	f, err := Setup(context.Background(), suite.Driver, cfg, t.Name(), log)
	if err != nil {
		return fatalf(t, "%v", err)
	}
	t.Cleanup(func() {
		if err := f.Teardown(); err != nil {
			t.Errorf("fixture teardown: %v", err)
		}
	})
	return f
}

func fatalf(t testing.TB, format string, args ...any) *Fixture {
	t.Helper()
	t.Fatalf("infrastructure: "+format, args...)
	return nil
}

// Setup acquires session, context and page. On failure everything already
// acquired is released and a *SetupError is returned. cfg.ScreenshotDir is
// resolved against the default here if still empty.
func Setup(ctx context.Context, driver output.Driver, cfg Config, name string, log output.LoggerPort) (*Fixture, error) {
	if driver == nil {
		return nil, &SetupError{Stage: StageLaunch, Err: errors.New("no driver configured")}
	}
	if cfg.Viewport.Width == 0 || cfg.Viewport.Height == 0 {
		cfg.Viewport = entity.DefaultViewport
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}

	runID := uuid.NewString()
	f := &Fixture{
		RunID:         runID,
		Name:          name,
		cfg:           cfg,
		screenshotDir: ResolveScreenshotDir(cfg.ScreenshotDir, ""),
		log: log.WithFields(map[string]any{
			"run_id": runID,
			"test":   name,
			"driver": driver.Name(),
		}),
	}

	if err := f.acquire(ctx, driver); err != nil {
		_ = f.stack.Unwind(f.log)
		f.log.Error("Fixture setup failed", "stage", err.Stage, "error", err.Err)
		return nil, err
	}

	f.log.Debug("Fixture ready", "screenshot_dir", f.screenshotDir)
	return f, nil
}

func (f *Fixture) acquire(ctx context.Context, driver output.Driver) *SetupError {
	session, err := driver.Launch(ctx, entity.LaunchOptions{
		Headless:   f.cfg.Headless,
		SlowMotion: f.cfg.SlowMotion,
		Timeout:    f.cfg.ActionTimeout,
	})
	if err != nil {
		return &SetupError{Stage: StageLaunch, Err: err}
	}
	f.Session = session
	f.stack.Push("session", session.Close)

	opts := entity.ContextOptions{Viewport: f.cfg.Viewport}
	if f.cfg.RecordVideo {
		opts.VideoDir = f.cfg.VideoDir
	}
	bc, err := session.NewContext(ctx, opts)
	if err != nil {
		return &SetupError{Stage: StageContext, Err: err}
	}
	f.Context = bc
	f.stack.Push("context", f.closeContext)

	if f.cfg.Trace {
		if err := bc.StartTracing(ctx); err != nil {
			f.warnUnsupported("Tracing not started", err)
		} else {
			f.stack.Push("trace", f.stopTracing)
		}
	}

	page, err := bc.NewPage(ctx)
	if err != nil {
		return &SetupError{Stage: StagePage, Err: err}
	}
	f.Page = page
	f.stack.Push("page", f.closePage)
	return nil
}

func (f *Fixture) warnUnsupported(msg string, err error) {
	if errors.Is(err, entity.ErrUnsupported) {
		f.log.Warn(msg, "reason", "unsupported by driver")
		return
	}
	f.log.Warn(msg, "error", err)
}

func (f *Fixture) closePage() error {
	f.mu.Lock()
	page := f.Page
	f.mu.Unlock()
	return page.Close()
}

func (f *Fixture) stopTracing() error {
	path := artifacts.TracePath(f.cfg.TraceDir, f.Name)
	if err := f.Context.StopTracing(context.Background(), path); err != nil {
		return err
	}
	f.addArtifact(path)
	return nil
}

// closeContext closes the context and then collects the page video, which
// is only complete once its context is gone.
func (f *Fixture) closeContext() error {
	if err := f.Context.Close(); err != nil {
		return err
	}
	if f.cfg.RecordVideo && f.Page != nil {
		path, err := f.Page.VideoPath()
		if err != nil {
			f.warnUnsupported("No video recorded", err)
			return nil
		}
		f.addArtifact(path)
	}
	return nil
}

func (f *Fixture) addArtifact(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts = append(f.artifacts, path)
}

// Artifacts lists screenshots, videos and traces written so far.
func (f *Fixture) Artifacts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.artifacts...)
}

func (f *Fixture) ScreenshotDir() string { return f.screenshotDir }

func (f *Fixture) Logger() output.LoggerPort { return f.log }

func (f *Fixture) ActivePage() output.Page { return f.Page }

func (f *Fixture) BrowserContext() output.BrowserContext { return f.Context }

// Teardown releases page, context and session in that order. Every release
// is attempted; the first error is returned. Calling it again returns the
// same result without releasing anything twice.
func (f *Fixture) Teardown() error {
	err := f.stack.Unwind(f.log)

	f.mu.Lock()
	first := !f.torn
	f.torn = true
	f.mu.Unlock()

	if first {
		if err != nil {
			f.log.Error("Fixture teardown failed", "error", err)
		} else {
			f.log.Debug("Fixture torn down")
		}
	}
	return err
}

// TakeScreenshot writes a viewport PNG to {dir}/{test}_{name}.png and
// returns its path. Without an active page it does nothing.
func (f *Fixture) TakeScreenshot(ctx context.Context, name string) (string, error) {
	if f == nil {
		return "", nil
	}
	f.mu.Lock()
	active := f.Page != nil && !f.torn
	f.mu.Unlock()
	if !active {
		return "", nil
	}

	data, err := f.Page.Screenshot(ctx, entity.ScreenshotOptions{FullPage: false})
	if err != nil {
		return "", fmt.Errorf("screenshot %q: %w", name, err)
	}

	path := artifacts.ScreenshotPath(f.screenshotDir, f.Name, name)
	if err := artifacts.WriteFile(path, data); err != nil {
		return "", err
	}
	f.addArtifact(path)
	f.log.Info("Screenshot saved", "path", path)

	if f.cfg.ThumbWidth > 0 {
		thumb, err := artifacts.WriteThumbnail(path, data, f.cfg.ThumbWidth)
		if err != nil {
			f.log.Warn("Thumbnail not written", "path", path, "error", err)
		} else {
			f.addArtifact(thumb)
		}
	}
	return path, nil
}
