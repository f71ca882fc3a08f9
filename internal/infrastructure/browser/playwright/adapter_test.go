package playwright

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/logger"
	"github.com/jacqt4/PlaywrightTutorial/internal/testsite"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "chromium", cfg.Browser)
	assert.False(t, cfg.Install)
}

func TestNewDriver_DefaultsBrowser(t *testing.T) {
	d := NewDriver(Config{}, logger.NewNop())
	assert.Equal(t, "chromium", d.cfg.Browser)
	assert.Equal(t, DriverName, d.Name())
}

func TestLaunch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDriver(DefaultConfig(), logger.NewNop()).Launch(ctx, entity.LaunchOptions{Headless: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepare(t *testing.T) {
	assert.NoError(t, NewDriver(DefaultConfig(), logger.NewNop()).Prepare(context.Background()),
		"nothing to prepare without Install")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(Config{Install: true}, logger.NewNop())
	assert.ErrorIs(t, d.Prepare(ctx), context.Canceled)
}

func TestTimeoutMS(t *testing.T) {
	ms, err := timeoutMS(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, *ms)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = timeoutMS(cancelled, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimeoutMS_LongDeadlineKeepsDefault(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ms, err := timeoutMS(ctx, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, *ms)
}

func TestTimeoutMS_ShortDeadlineWins(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ms, err := timeoutMS(ctx, 5*time.Second)
	require.NoError(t, err)
	assert.LessOrEqual(t, *ms, 1000.0)
	assert.Greater(t, *ms, 0.0)
}

func TestTimeoutMS_NoTimeLeftIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Microsecond)
	defer cancel()

	_, err := timeoutMS(ctx, 5*time.Second)
	assert.ErrorIs(t, err, entity.ErrTimeout, "never hand playwright a 0ms timeout")

	<-ctx.Done()
	_, err = timeoutMS(ctx, 5*time.Second)
	assert.ErrorIs(t, err, entity.ErrTimeout)
}

func TestTranslate(t *testing.T) {
	err := translate(playwright.ErrTimeout)
	assert.ErrorIs(t, err, entity.ErrTimeout)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	assert.ErrorIs(t, translate(playwright.ErrTargetClosed), entity.ErrClosed)

	other := errors.New("boom")
	assert.Same(t, other, translate(other))
}

func TestStateMapping(t *testing.T) {
	assert.Equal(t, playwright.LoadStateDomcontentloaded, loadState(entity.LoadStateDOMContentLoaded))
	assert.Equal(t, playwright.LoadStateNetworkidle, loadState(entity.LoadStateNetworkIdle))
	assert.Equal(t, playwright.LoadStateLoad, loadState(entity.LoadStateLoad))

	assert.Equal(t, playwright.WaitForSelectorStateAttached, waitState(entity.ElementAttached))
	assert.Equal(t, playwright.WaitForSelectorStateDetached, waitState(entity.ElementDetached))
	assert.Equal(t, playwright.WaitForSelectorStateHidden, waitState(entity.ElementHidden))
	assert.Equal(t, playwright.WaitForSelectorStateVisible, waitState(entity.ElementVisible))
}

// newTestPage launches headless chromium, or skips when the playwright
// driver or browser is not installed.
func newTestPage(t *testing.T) (output.BrowserContext, output.Page) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	ctx := context.Background()

	sess, err := NewDriver(DefaultConfig(), logger.NewTestLogger(t)).
		Launch(ctx, entity.LaunchOptions{Headless: true, Timeout: 3 * time.Second})
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	bc, err := sess.NewContext(ctx, entity.ContextOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bc.Close() })

	page, err := bc.NewPage(ctx)
	require.NoError(t, err)
	return bc, page
}

func TestPage_SearchFlow(t *testing.T) {
	_, page := newTestPage(t)
	site := testsite.Start(testsite.Options{})
	defer site.Close()
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, site.URL+"/bing/"))

	box := page.Locator("input[name='q']")
	require.NoError(t, box.Fill(ctx, "playwright"))
	require.NoError(t, page.Press(ctx, "Enter"))
	require.NoError(t, page.WaitForURL(ctx, "**/search?**"))

	n, err := page.Locator("#b_results li.b_algo").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, testsite.ResultsPerPage, n)

	text, err := page.Locator("#b_results li.b_algo h2 a").First().TextContent(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "playwright")
}

func TestPage_DocsLocators(t *testing.T) {
	_, page := newTestPage(t)
	site := testsite.Start(testsite.Options{})
	defer site.Close()
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, site.URL+"/playwright/"))

	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Contains(t, title, "Playwright")

	visible, err := page.GetByRole(entity.RoleButton, "Search").IsVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)

	require.NoError(t, page.GetByPlaceholder("Search docs").Fill(ctx, "locators"))
	value, err := page.GetByPlaceholder("Search docs").InputValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "locators", value)
}

func TestLocator_WaitForTimesOut(t *testing.T) {
	_, page := newTestPage(t)
	site := testsite.Start(testsite.Options{})
	defer site.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, page.Goto(context.Background(), site.URL+"/bing/"))
	err := page.Locator("#never-there").WaitFor(ctx, entity.ElementVisible)
	assert.ErrorIs(t, err, entity.ErrTimeout)
}

func TestBrowserContext_Get(t *testing.T) {
	bc, _ := newTestPage(t)
	site := testsite.Start(testsite.Options{})
	defer site.Close()

	resp, err := bc.Get(context.Background(), site.URL+"/healthz")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestPage_UseAfterClose(t *testing.T) {
	_, page := newTestPage(t)
	require.NoError(t, page.Close())

	_, err := page.Title(context.Background())
	assert.Error(t, err)
}
