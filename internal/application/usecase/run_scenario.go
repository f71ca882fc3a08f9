package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/input"
	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/fixture"
)

const failureScreenshot = "failure"

var _ input.ScenarioRunner = (*RunScenarioUseCase)(nil)

type RunScenarioUseCase struct {
	driver    output.Driver
	scenarios output.ScenarioRegistry
	cfg       fixture.Config
	logger    output.LoggerPort
}

func NewRunScenarioUseCase(
	driver output.Driver,
	scenarios output.ScenarioRegistry,
	cfg fixture.Config,
	logger output.LoggerPort,
) *RunScenarioUseCase {
	return &RunScenarioUseCase{
		driver:    driver,
		scenarios: scenarios,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run sets up a fixture, runs the scenario, captures a failure screenshot
// when it fails and tears the fixture down. A fixture that cannot be set up
// yields a broken result.
func (uc *RunScenarioUseCase) Run(ctx context.Context, name string) (*entity.ScenarioResult, error) {
	scenario, ok := uc.scenarios.Get(name)
	if !ok {
		return nil, fmt.Errorf("scenario %q: %w", name, entity.ErrNotFound)
	}

	start := time.Now()
	result := &entity.ScenarioResult{Name: name}

	f, err := fixture.Setup(ctx, uc.driver, uc.cfg, name, uc.logger)
	if err != nil {
		result.Status = entity.ScenarioBroken
		result.Err = err
		result.Duration = time.Since(start)
		return result, nil
	}
	result.RunID = f.RunID
	log := f.Logger()

	log.Info("Scenario started", "scenario", name)
	runErr := runSafely(ctx, scenario, f)

	if runErr != nil {
		result.Status = entity.ScenarioFailed
		result.Err = runErr
		if _, err := f.TakeScreenshot(context.WithoutCancel(ctx), failureScreenshot); err != nil {
			log.Warn("Failure screenshot not taken", "error", err)
		}
	} else {
		result.Status = entity.ScenarioPassed
	}

	if err := f.Teardown(); err != nil {
		log.Warn("Teardown failed", "error", err)
	}

	result.Artifacts = f.Artifacts()
	result.Duration = time.Since(start)

	if result.Passed() {
		log.Info("Scenario passed", "duration", result.Duration)
	} else {
		log.Error("Scenario failed", "duration", result.Duration, "error", result.Err)
	}
	return result, nil
}

// RunAll runs the named scenarios in order, or every registered scenario
// when names is empty. It stops early only when ctx is done.
func (uc *RunScenarioUseCase) RunAll(ctx context.Context, names []string) ([]*entity.ScenarioResult, error) {
	if len(names) == 0 {
		names = uc.scenarios.Names()
	}
	for _, name := range names {
		if _, ok := uc.scenarios.Get(name); !ok {
			return nil, fmt.Errorf("scenario %q: %w", name, entity.ErrNotFound)
		}
	}

	results := make([]*entity.ScenarioResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := uc.Run(ctx, name)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func runSafely(ctx context.Context, scenario output.ScenarioPort, env output.ScenarioEnv) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scenario panicked: %v", r)
		}
	}()
	return scenario.Run(ctx, env)
}

// IsBroken reports whether result failed for infrastructure reasons.
func IsBroken(result *entity.ScenarioResult) bool {
	var setupErr *fixture.SetupError
	return result.Status == entity.ScenarioBroken || errors.As(result.Err, &setupErr)
}
