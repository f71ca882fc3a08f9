package playwright

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

const (
	DriverName     = "playwright"
	defaultTimeout = 5 * time.Second
)

var (
	_ output.Driver         = (*Driver)(nil)
	_ output.Session        = (*session)(nil)
	_ output.BrowserContext = (*browserContext)(nil)
	_ output.Page           = (*page)(nil)
	_ output.Locator        = (*locator)(nil)
)

type Config struct {
	// Browser is one of chromium, firefox or webkit.
	Browser string
	// Install downloads the driver and browser before the first launch.
	Install bool
}

func DefaultConfig() Config {
	return Config{Browser: "chromium"}
}

type Driver struct {
	cfg         Config
	log         output.LoggerPort
	installOnce sync.Once
	installErr  error
}

func NewDriver(cfg Config, log output.LoggerPort) *Driver {
	if cfg.Browser == "" {
		cfg.Browser = "chromium"
	}
	return &Driver{cfg: cfg, log: log.Named("playwright")}
}

func (d *Driver) Name() string { return DriverName }

// Prepare runs the download Install asks for up front, so the first Launch
// does not pay for it. It gives up when ctx ends; the download itself cannot
// be interrupted and finishes in the background.
func (d *Driver) Prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.cfg.Install {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- d.install() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) install() error {
	d.installOnce.Do(func() {
		d.log.Info("Installing playwright driver", "browser", d.cfg.Browser)
		d.installErr = playwright.Install(&playwright.RunOptions{Browsers: []string{d.cfg.Browser}})
	})
	if d.installErr != nil {
		return fmt.Errorf("install playwright: %w", d.installErr)
	}
	return nil
}

func (d *Driver) Launch(ctx context.Context, opts entity.LaunchOptions) (output.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.cfg.Install {
		if err := d.install(); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch d.cfg.Browser {
	case "chromium":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", d.cfg.Browser)
	}

	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMotion.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", d.cfg.Browser, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	d.log.Debug("Browser launched", "browser", d.cfg.Browser, "version", browser.Version(), "headless", opts.Headless)
	return &session{pw: pw, browser: browser, timeout: timeout, log: d.log}, nil
}

type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout time.Duration
	log     output.LoggerPort
}

func (s *session) NewContext(ctx context.Context, opts entity.ContextOptions) (output.BrowserContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.browser.IsConnected() {
		return nil, fmt.Errorf("new context: %w", entity.ErrClosed)
	}

	vp := opts.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		vp = entity.DefaultViewport
	}
	size := &playwright.Size{Width: vp.Width, Height: vp.Height}

	o := playwright.BrowserNewContextOptions{Viewport: size}
	if opts.VideoDir != "" {
		o.RecordVideo = &playwright.RecordVideo{Dir: opts.VideoDir, Size: size}
	}

	bc, err := s.browser.NewContext(o)
	if err != nil {
		return nil, fmt.Errorf("new context: %w", translate(err))
	}
	ms := float64(s.timeout.Milliseconds())
	bc.SetDefaultTimeout(ms)
	bc.SetDefaultNavigationTimeout(ms)

	return &browserContext{bc: bc, timeout: s.timeout}, nil
}

// Close closes the browser and then stops the driver process. Both are
// attempted; the first error is returned.
func (s *session) Close() error {
	var first error
	if err := s.browser.Close(); err != nil {
		first = fmt.Errorf("close browser: %w", translate(err))
	}
	if err := s.pw.Stop(); err != nil && first == nil {
		first = fmt.Errorf("stop playwright: %w", err)
	}
	return first
}

type browserContext struct {
	bc      playwright.BrowserContext
	timeout time.Duration
}

func (c *browserContext) NewPage(ctx context.Context) (output.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := c.bc.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", translate(err))
	}
	return &page{p: p, timeout: c.timeout}, nil
}

func (c *browserContext) Get(ctx context.Context, url string) (*entity.APIResponse, error) {
	if err := entity.ValidateURL(url); err != nil {
		return nil, err
	}
	timeout, err := timeoutMS(ctx, c.timeout)
	if err != nil {
		return nil, err
	}

	resp, err := c.bc.Request().Get(url, playwright.APIRequestContextGetOptions{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, translate(err))
	}
	defer resp.Dispose()

	body, err := resp.Body()
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, translate(err))
	}
	return &entity.APIResponse{
		URL:        resp.URL(),
		StatusCode: resp.Status(),
		Headers:    resp.Headers(),
		Body:       body,
	}, nil
}

func (c *browserContext) StartTracing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.bc.Tracing().Start(playwright.TracingStartOptions{
		Screenshots: playwright.Bool(true),
		Snapshots:   playwright.Bool(true),
		Sources:     playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("start tracing: %w", translate(err))
	}
	return nil
}

func (c *browserContext) StopTracing(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.bc.Tracing().Stop(path); err != nil {
		return fmt.Errorf("stop tracing: %w", translate(err))
	}
	return nil
}

func (c *browserContext) Close() error {
	if err := c.bc.Close(); err != nil {
		return fmt.Errorf("close context: %w", translate(err))
	}
	return nil
}

type page struct {
	p       playwright.Page
	timeout time.Duration
}

func (p *page) Goto(ctx context.Context, url string) error {
	if err := entity.ValidateURL(url); err != nil {
		return err
	}
	timeout, err := timeoutMS(ctx, p.timeout)
	if err != nil {
		return err
	}
	_, err = p.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   timeout,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, translate(err))
	}
	return nil
}

func (p *page) URL() string {
	return p.p.URL()
}

func (p *page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := p.p.Title()
	if err != nil {
		return "", fmt.Errorf("title: %w", translate(err))
	}
	return title, nil
}

func (p *page) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := p.p.Content()
	if err != nil {
		return "", fmt.Errorf("content: %w", translate(err))
	}
	return content, nil
}

func (p *page) Locator(selector string) output.Locator {
	return p.wrap(p.p.Locator(selector), selector)
}

func (p *page) GetByRole(role entity.Role, name string) output.Locator {
	opts := playwright.PageGetByRoleOptions{}
	desc := fmt.Sprintf("role=%s", role)
	if name != "" {
		opts.Name = name
		desc = fmt.Sprintf("role=%s[name=%q]", role, name)
	}
	return p.wrap(p.p.GetByRole(playwright.AriaRole(role), opts), desc)
}

func (p *page) GetByLabel(text string) output.Locator {
	return p.wrap(p.p.GetByLabel(text), fmt.Sprintf("label=%q", text))
}

func (p *page) GetByPlaceholder(text string) output.Locator {
	return p.wrap(p.p.GetByPlaceholder(text), fmt.Sprintf("placeholder=%q", text))
}

func (p *page) GetByText(text string) output.Locator {
	return p.wrap(p.p.GetByText(text), fmt.Sprintf("text=%q", text))
}

func (p *page) wrap(l playwright.Locator, desc string) output.Locator {
	return &locator{l: l, desc: desc, timeout: p.timeout}
}

func (p *page) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.p.Keyboard().Press(key); err != nil {
		return fmt.Errorf("press %s: %w", key, translate(err))
	}
	return nil
}

func (p *page) WaitForURL(ctx context.Context, pattern string) error {
	timeout, err := timeoutMS(ctx, p.timeout)
	if err != nil {
		return err
	}
	if err := p.p.WaitForURL(pattern, playwright.PageWaitForURLOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("wait for url %q (at %s): %w", pattern, p.p.URL(), translate(err))
	}
	return nil
}

func (p *page) WaitForLoadState(ctx context.Context, state entity.LoadState) error {
	timeout, err := timeoutMS(ctx, p.timeout)
	if err != nil {
		return err
	}
	err = p.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", state, translate(err))
	}
	return nil
}

func (p *page) Screenshot(ctx context.Context, opts entity.ScreenshotOptions) ([]byte, error) {
	timeout, err := timeoutMS(ctx, p.timeout)
	if err != nil {
		return nil, err
	}
	data, err := p.p.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", translate(err))
	}
	return data, nil
}

func (p *page) VideoPath() (string, error) {
	v := p.p.Video()
	if v == nil {
		return "", fmt.Errorf("video: recording not enabled: %w", entity.ErrUnsupported)
	}
	path, err := v.Path()
	if err != nil {
		return "", fmt.Errorf("video path: %w", translate(err))
	}
	return path, nil
}

func (p *page) Close() error {
	if p.p.IsClosed() {
		return nil
	}
	if err := p.p.Close(); err != nil {
		return fmt.Errorf("close page: %w", translate(err))
	}
	return nil
}

type locator struct {
	l       playwright.Locator
	desc    string
	timeout time.Duration
}

func (l *locator) derive(next playwright.Locator, suffix string) *locator {
	return &locator{l: next, desc: l.desc + " >> " + suffix, timeout: l.timeout}
}

func (l *locator) First() output.Locator {
	return l.derive(l.l.First(), "nth=0")
}

func (l *locator) Nth(index int) output.Locator {
	return l.derive(l.l.Nth(index), fmt.Sprintf("nth=%d", index))
}

func (l *locator) Locator(selector string) output.Locator {
	return l.derive(l.l.Locator(selector), selector)
}

func (l *locator) String() string { return l.desc }

func (l *locator) Fill(ctx context.Context, value string) error {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return err
	}
	if err := l.l.Fill(value, playwright.LocatorFillOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("fill %s: %w", l.desc, translate(err))
	}
	return nil
}

func (l *locator) Click(ctx context.Context) error {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return err
	}
	if err := l.l.Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("click %s: %w", l.desc, translate(err))
	}
	return nil
}

func (l *locator) Press(ctx context.Context, key string) error {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return err
	}
	if err := l.l.Press(key, playwright.LocatorPressOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("press %s on %s: %w", key, l.desc, translate(err))
	}
	return nil
}

func (l *locator) TextContent(ctx context.Context) (string, error) {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return "", err
	}
	text, err := l.l.TextContent(playwright.LocatorTextContentOptions{Timeout: timeout})
	if err != nil {
		return "", fmt.Errorf("text of %s: %w", l.desc, translate(err))
	}
	return text, nil
}

func (l *locator) InputValue(ctx context.Context) (string, error) {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return "", err
	}
	value, err := l.l.InputValue(playwright.LocatorInputValueOptions{Timeout: timeout})
	if err != nil {
		return "", fmt.Errorf("value of %s: %w", l.desc, translate(err))
	}
	return value, nil
}

func (l *locator) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := l.l.IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility of %s: %w", l.desc, translate(err))
	}
	return visible, nil
}

func (l *locator) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := l.l.Count()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", l.desc, translate(err))
	}
	return n, nil
}

func (l *locator) WaitFor(ctx context.Context, state entity.ElementState) error {
	timeout, err := timeoutMS(ctx, l.timeout)
	if err != nil {
		return err
	}
	err = l.l.WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState(state),
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("wait for %s to be %s: %w", l.desc, state, translate(err))
	}
	return nil
}

// timeoutMS returns the per-call timeout in milliseconds: def, or the
// context's remaining time when that is shorter. Playwright reads 0 as "no
// timeout", so anything under a millisecond is reported as ErrTimeout.
func timeoutMS(ctx context.Context, def time.Duration) (*float64, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", entity.ErrTimeout, err)
		}
		return nil, err
	}
	d := def
	if deadline, ok := ctx.Deadline(); ok {
		d = min(d, time.Until(deadline))
	}
	ms := d.Milliseconds()
	if ms <= 0 {
		return nil, fmt.Errorf("%w: less than 1ms left", entity.ErrTimeout)
	}
	return playwright.Float(float64(ms)), nil
}

// translate maps playwright-go errors onto the entity sentinels while
// keeping the original error in the chain.
func translate(err error) error {
	switch {
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %w", entity.ErrTimeout, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %w", entity.ErrClosed, err)
	default:
		return err
	}
}

func loadState(s entity.LoadState) *playwright.LoadState {
	switch s {
	case entity.LoadStateDOMContentLoaded:
		return playwright.LoadStateDomcontentloaded
	case entity.LoadStateNetworkIdle:
		return playwright.LoadStateNetworkidle
	default:
		return playwright.LoadStateLoad
	}
}

func waitState(s entity.ElementState) *playwright.WaitForSelectorState {
	switch s {
	case entity.ElementAttached:
		return playwright.WaitForSelectorStateAttached
	case entity.ElementDetached:
		return playwright.WaitForSelectorStateDetached
	case entity.ElementHidden:
		return playwright.WaitForSelectorStateHidden
	default:
		return playwright.WaitForSelectorStateVisible
	}
}
