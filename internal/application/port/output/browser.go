package output

import (
	"context"

	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

// Driver launches browser sessions. One implementation exists per automation
// library.
type Driver interface {
	Name() string
	Launch(ctx context.Context, opts entity.LaunchOptions) (Session, error)
}

// Session is one running browser process.
type Session interface {
	NewContext(ctx context.Context, opts entity.ContextOptions) (BrowserContext, error)
	Close() error
}

// BrowserContext is an isolated cookie and storage scope within a Session.
type BrowserContext interface {
	NewPage(ctx context.Context) (Page, error)

	// Get issues an HTTP request sharing the context's cookies, for checks
	// that do not need the UI.
	Get(ctx context.Context, url string) (*entity.APIResponse, error)

	StartTracing(ctx context.Context) error
	StopTracing(ctx context.Context, path string) error

	Close() error
}

// Page is one document within a BrowserContext.
type Page interface {
	Goto(ctx context.Context, url string) error
	URL() string
	Title(ctx context.Context) (string, error)
	Content(ctx context.Context) (string, error)

	Locator(selector string) Locator
	GetByRole(role entity.Role, name string) Locator
	GetByLabel(text string) Locator
	GetByPlaceholder(text string) Locator
	GetByText(text string) Locator

	// Press sends a key to whatever element currently has focus.
	Press(ctx context.Context, key string) error

	// WaitForURL blocks until the page URL matches the glob pattern, where
	// "**" matches any run of characters and "*" any run without '/'.
	WaitForURL(ctx context.Context, pattern string) error
	WaitForLoadState(ctx context.Context, state entity.LoadState) error

	Screenshot(ctx context.Context, opts entity.ScreenshotOptions) ([]byte, error)

	// VideoPath is only known once the owning context has been closed.
	VideoPath() (string, error)

	Close() error
}

// Locator is a deferred query against a page's current DOM. It is resolved
// again on every call; no element handle is kept between calls.
type Locator interface {
	First() Locator
	Nth(index int) Locator
	Locator(selector string) Locator

	Fill(ctx context.Context, value string) error
	Click(ctx context.Context) error
	Press(ctx context.Context, key string) error

	TextContent(ctx context.Context) (string, error)
	InputValue(ctx context.Context) (string, error)
	IsVisible(ctx context.Context) (bool, error)

	// Count returns the number of matches right now, without waiting.
	Count(ctx context.Context) (int, error)
	WaitFor(ctx context.Context, state entity.ElementState) error

	String() string
}
