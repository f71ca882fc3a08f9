package di

import (
	"context"
	"fmt"

	"github.com/jacqt4/PlaywrightTutorial/internal/adapter/scenario"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/input"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/service"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/usecase"
	"github.com/jacqt4/PlaywrightTutorial/internal/fixture"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/playwright"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/rod"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/static"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/logger"
)

type Container struct {
	Driver    output.Driver
	Logger    output.LoggerPort
	Scenarios output.ScenarioRegistry
	Runner    input.ScenarioRunner
}

type Config struct {
	Fixture fixture.Config
	Targets scenario.Targets

	// LogName names the log file; empty disables file logging.
	LogName string
	// InstallBrowsers lets the playwright driver download what it needs.
	InstallBrowsers bool
}

// preparer is implemented by drivers with setup worth doing before the
// first launch.
type preparer interface {
	Prepare(ctx context.Context) error
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var log output.LoggerPort
	if cfg.LogName != "" {
		l, err := logger.NewLoggerAdapter(cfg.LogName, logger.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	} else {
		log = logger.NewNop()
	}

	driver, err := NewDriver(cfg.Fixture.Driver, cfg.InstallBrowsers, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	if p, ok := driver.(preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to prepare %s driver: %w", driver.Name(), err)
		}
	}

	scenarios := service.NewScenarioRegistry()
	scenario.Register(scenarios, cfg.Targets)

	runner := usecase.NewRunScenarioUseCase(driver, scenarios, cfg.Fixture, log)

	return &Container{
		Driver:    driver,
		Logger:    log,
		Scenarios: scenarios,
		Runner:    runner,
	}, nil
}

// NewDriver builds the browser driver registered under name.
func NewDriver(name string, install bool, log output.LoggerPort) (output.Driver, error) {
	switch name {
	case "", playwright.DriverName:
		cfg := playwright.DefaultConfig()
		cfg.Install = install
		return playwright.NewDriver(cfg, log), nil
	case rod.DriverName:
		return rod.NewDriver(rod.DefaultConfig(), log), nil
	case static.DriverName:
		return static.NewDriver(log), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q (want %s, %s or %s)",
			name, playwright.DriverName, rod.DriverName, static.DriverName)
	}
}

func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
		c.Logger.Close()
	}
}
