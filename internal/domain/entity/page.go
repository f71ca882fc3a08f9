package entity

import "time"

type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport matches the viewport every suite context is created with
// unless the configuration says otherwise.
var DefaultViewport = Viewport{Width: 1280, Height: 720}

type LaunchOptions struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout is the default for every action and wait issued through
	// pages of this session when the caller's context carries no deadline.
	Timeout time.Duration
}

type ContextOptions struct {
	Viewport Viewport
	// VideoDir enables per-page video recording when non-empty.
	VideoDir string
}

type ScreenshotOptions struct {
	FullPage bool
}

// LoadState is a document lifecycle milestone a page can be waited on.
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// ElementState is the condition a locator waits for.
type ElementState string

const (
	ElementAttached ElementState = "attached"
	ElementDetached ElementState = "detached"
	ElementVisible  ElementState = "visible"
	ElementHidden   ElementState = "hidden"
)

// Role is an ARIA role used by role-based locators.
type Role string

const (
	RoleButton   Role = "button"
	RoleLink     Role = "link"
	RoleTextbox  Role = "textbox"
	RoleHeading  Role = "heading"
	RoleSearch   Role = "searchbox"
	RoleCheckbox Role = "checkbox"
)

type APIResponse struct {
	URL        string
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
