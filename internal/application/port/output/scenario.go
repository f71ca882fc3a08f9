package output

import "context"

// ScenarioEnv is what a running scenario gets to work with: one page in a
// fresh context, plus artifact helpers.
type ScenarioEnv interface {
	ActivePage() Page
	BrowserContext() BrowserContext
	TakeScreenshot(ctx context.Context, name string) (string, error)
	Logger() LoggerPort
}

type ScenarioPort interface {
	Name() string
	Description() string
	Run(ctx context.Context, env ScenarioEnv) error
}

type ScenarioRegistry interface {
	Register(scenario ScenarioPort)
	Get(name string) (ScenarioPort, bool)
	All() []ScenarioPort
	Names() []string
}
