package fixture

import (
	"time"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/artifacts"
)

// Environment keys read by ConfigFromEnv.
const (
	EnvDriver         = "BROWSER_DRIVER"
	EnvHeadless       = "HEADLESS"
	EnvSlowMo         = "SLOW_MO"
	EnvViewportWidth  = "VIEWPORT_WIDTH"
	EnvViewportHeight = "VIEWPORT_HEIGHT"
	EnvActionTimeout  = "ACTION_TIMEOUT"
	EnvScreenshotDir  = "SCREENSHOT_DIR"
	EnvRecordVideo    = "RECORD_VIDEO"
	EnvVideoDir       = "VIDEO_DIR"
	EnvTrace          = "TRACE"
	EnvTraceDir       = "TRACE_DIR"
	EnvThumbWidth     = "SCREENSHOT_THUMB_WIDTH"
)

const DefaultActionTimeout = 5 * time.Second

type Config struct {
	Driver     string
	Headless   bool
	SlowMotion time.Duration
	Viewport   entity.Viewport
	// ActionTimeout bounds every action and wait whose context has no
	// deadline of its own.
	ActionTimeout time.Duration

	// ScreenshotDir is the per-run parameter; it wins over Suite.ScreenshotDir.
	ScreenshotDir string

	RecordVideo bool
	VideoDir    string
	Trace       bool
	TraceDir    string

	// ThumbWidth > 0 writes a scaled copy next to every screenshot.
	ThumbWidth int
}

func DefaultConfig() Config {
	return Config{
		Driver:        "playwright",
		Headless:      true,
		Viewport:      entity.DefaultViewport,
		ActionTimeout: DefaultActionTimeout,
		VideoDir:      artifacts.DefaultVideoDir,
		TraceDir:      artifacts.DefaultTraceDir,
	}
}

// ConfigFromEnv overlays DefaultConfig with whatever the environment sets.
func ConfigFromEnv(env output.ConfigPort) Config {
	def := DefaultConfig()
	return Config{
		Driver:     env.GetWithDefault(EnvDriver, def.Driver),
		Headless:   env.GetBool(EnvHeadless, def.Headless),
		SlowMotion: env.GetDuration(EnvSlowMo, def.SlowMotion),
		Viewport: entity.Viewport{
			Width:  env.GetInt(EnvViewportWidth, def.Viewport.Width),
			Height: env.GetInt(EnvViewportHeight, def.Viewport.Height),
		},
		ActionTimeout: env.GetDuration(EnvActionTimeout, def.ActionTimeout),
		ScreenshotDir: env.Get(EnvScreenshotDir),
		RecordVideo:   env.GetBool(EnvRecordVideo, def.RecordVideo),
		VideoDir:      env.GetWithDefault(EnvVideoDir, def.VideoDir),
		Trace:         env.GetBool(EnvTrace, def.Trace),
		TraceDir:      env.GetWithDefault(EnvTraceDir, def.TraceDir),
		ThumbWidth:    env.GetInt(EnvThumbWidth, def.ThumbWidth),
	}
}

// ResolveScreenshotDir picks the run parameter, then the suite override,
// then the default directory.
func ResolveScreenshotDir(param, override string) string {
	switch {
	case param != "":
		return param
	case override != "":
		return override
	default:
		return artifacts.DefaultScreenshotDir
	}
}
