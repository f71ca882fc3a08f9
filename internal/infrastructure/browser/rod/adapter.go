package rod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/glob"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/selector"
)

const (
	DriverName = "rod"

	defaultTimeout = 10 * time.Second
	pollInterval   = 100 * time.Millisecond
)

var (
	_ output.Driver         = (*Driver)(nil)
	_ output.Session        = (*session)(nil)
	_ output.BrowserContext = (*browserContext)(nil)
	_ output.Page           = (*page)(nil)
	_ output.Locator        = (*locator)(nil)
)

type Config struct {
	NoSandbox bool
	DevTools  bool
	// Bin is an explicit browser binary; empty lets the launcher find or
	// download one.
	Bin string
}

func DefaultConfig() Config {
	return Config{
		NoSandbox: false,
		DevTools:  false,
	}
}

type Driver struct {
	cfg Config
	log output.LoggerPort
}

func NewDriver(cfg Config, log output.LoggerPort) *Driver {
	return &Driver{cfg: cfg, log: log.Named("rod")}
}

func (d *Driver) Name() string { return DriverName }

func (d *Driver) Launch(ctx context.Context, opts entity.LaunchOptions) (output.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Devtools(d.cfg.DevTools).
		NoSandbox(d.cfg.NoSandbox).
		Delete("use-mock-keychain")
	if d.cfg.Bin != "" {
		l = l.Bin(d.cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(opts.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	d.log.Debug("Browser launched", "control_url", url, "headless", opts.Headless)
	return &session{
		browser:  browser,
		launcher: l,
		timeout:  timeout,
	}, nil
}

type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	closed   atomic.Bool
}

func (s *session) NewContext(ctx context.Context, opts entity.ContextOptions) (output.BrowserContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, fmt.Errorf("new context: %w", entity.ErrClosed)
	}

	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	vp := opts.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		vp = entity.DefaultViewport
	}
	return &browserContext{
		session:  s,
		browser:  incognito,
		client:   &http.Client{Jar: jar, Timeout: s.timeout},
		viewport: vp,
	}, nil
}

func (s *session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	var first error
	if err := s.browser.Close(); err != nil {
		first = fmt.Errorf("close browser: %w", err)
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	return first
}

// browserContext is an incognito browser context. Video recording and
// tracing have no CDP equivalent here and report entity.ErrUnsupported.
type browserContext struct {
	session *session
	browser *rod.Browser
	// client backs Get. Its jar is refilled from the browser before every
	// request, and cookies set by the response are copied back.
	client   *http.Client
	viewport entity.Viewport
	closed   atomic.Bool
}

func (c *browserContext) alive() error {
	if c.closed.Load() || c.session.closed.Load() {
		return entity.ErrClosed
	}
	return nil
}

func (c *browserContext) NewPage(ctx context.Context) (output.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.alive(); err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	rp, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	err = rp.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             c.viewport.Width,
		Height:            c.viewport.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = rp.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return &page{ctx: c, rp: rp, timeout: c.session.timeout}, nil
}

func (c *browserContext) Get(ctx context.Context, url string) (*entity.APIResponse, error) {
	if err := entity.ValidateURL(url); err != nil {
		return nil, err
	}
	if err := c.alive(); err != nil {
		return nil, err
	}
	if err := c.pullCookies(); err != nil {
		return nil, fmt.Errorf("read browser cookies: %w", err)
	}

	resp, set, err := httpGet(ctx, c.client, url)
	if err != nil {
		return nil, err
	}
	if err := c.pushCookies(resp.URL, set); err != nil {
		return nil, fmt.Errorf("store response cookies: %w", err)
	}
	return resp, nil
}

func (c *browserContext) pullCookies() error {
	cookies, err := c.browser.GetCookies()
	if err != nil {
		return err
	}
	for _, ck := range cookies {
		host := strings.TrimPrefix(ck.Domain, ".")
		scheme := "http"
		if ck.Secure {
			scheme = "https"
		}
		hc := &http.Cookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     ck.Path,
			Secure:   ck.Secure,
			HttpOnly: ck.HTTPOnly,
		}
		if strings.HasPrefix(ck.Domain, ".") {
			hc.Domain = host
		}
		c.client.Jar.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: "/"}, []*http.Cookie{hc})
	}
	return nil
}

func (c *browserContext) pushCookies(target string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, ck := range cookies {
		path := ck.Path
		if path == "" {
			path = "/"
		}
		params = append(params, &proto.NetworkCookieParam{
			Name:     ck.Name,
			Value:    ck.Value,
			URL:      target,
			Path:     path,
			Secure:   ck.Secure,
			HTTPOnly: ck.HttpOnly,
		})
	}
	return c.browser.SetCookies(params)
}

func (c *browserContext) StartTracing(context.Context) error {
	return fmt.Errorf("tracing: %w", entity.ErrUnsupported)
}

func (c *browserContext) StopTracing(context.Context, string) error {
	return fmt.Errorf("tracing: %w", entity.ErrUnsupported)
}

func (c *browserContext) Close() error {
	if c.closed.Swap(true) || c.session.closed.Load() {
		return nil
	}
	c.client.CloseIdleConnections()
	if err := c.browser.Close(); err != nil {
		return fmt.Errorf("close context: %w", err)
	}
	return nil
}

type page struct {
	ctx     *browserContext
	rp      *rod.Page
	timeout time.Duration
	closed  atomic.Bool
}

func (p *page) alive() error {
	if p.closed.Load() {
		return entity.ErrClosed
	}
	return p.ctx.alive()
}

// bound returns the rod page limited by the per-call timeout, or by ctx
// when its deadline comes sooner.
func (p *page) bound(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := p.alive(); err != nil {
		return nil, nil, err
	}
	c, cancel := callContext(ctx, p.timeout)
	return p.rp.Context(c), cancel, nil
}

// callContext bounds one call by timeout. A parent deadline that is
// further away never stretches it.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (p *page) Goto(ctx context.Context, url string) error {
	if err := entity.ValidateURL(url); err != nil {
		return err
	}
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := rp.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %s: %w", url, translate(err))
	}
	if err := rp.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %s: %w", url, translate(err))
	}
	return nil
}

func (p *page) URL() string {
	info, err := p.rp.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *page) Title(ctx context.Context) (string, error) {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	info, err := rp.Info()
	if err != nil {
		return "", fmt.Errorf("title: %w", translate(err))
	}
	return info.Title, nil
}

func (p *page) Content(ctx context.Context) (string, error) {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	html, err := rp.HTML()
	if err != nil {
		return "", fmt.Errorf("content: %w", translate(err))
	}
	return html, nil
}

func (p *page) Locator(css string) output.Locator {
	return &locator{page: p, steps: []step{{css: css, nth: -1}}}
}

func (p *page) GetByRole(role entity.Role, name string) output.Locator {
	q := selector.Role(role, name)
	return &locator{page: p, steps: []step{{css: q.CSS, name: q.Name, nth: -1, desc: fmt.Sprintf("role=%s[name=%q]", role, name)}}}
}

func (p *page) GetByLabel(text string) output.Locator {
	return &locator{page: p, steps: []step{{xpath: selector.LabelXPath(text), nth: -1, desc: fmt.Sprintf("label=%q", text)}}}
}

func (p *page) GetByPlaceholder(text string) output.Locator {
	return &locator{page: p, steps: []step{{css: selector.Placeholder(text).CSS, nth: -1}}}
}

func (p *page) GetByText(text string) output.Locator {
	return &locator{page: p, steps: []step{{xpath: selector.TextXPath(text), nth: -1, desc: fmt.Sprintf("text=%q", text)}}}
}

func (p *page) Press(ctx context.Context, key string) error {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	k, err := keyOf(key)
	if err != nil {
		return err
	}
	if err := rp.Keyboard.Type(k); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, translate(err))
	}
	return nil
}

func (p *page) WaitForURL(ctx context.Context, pattern string) error {
	if _, err := glob.Compile(pattern); err != nil {
		return err
	}
	return p.poll(ctx, fmt.Sprintf("url %q", pattern), func(rp *rod.Page) (bool, error) {
		info, err := rp.Info()
		if err != nil {
			return false, err
		}
		return glob.Match(pattern, info.URL), nil
	})
}

func (p *page) WaitForLoadState(ctx context.Context, state entity.LoadState) error {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	switch state {
	case entity.LoadStateDOMContentLoaded:
		err = rp.Wait(rod.Eval(`() => document.readyState !== 'loading'`))
	case entity.LoadStateNetworkIdle:
		// requestIdleCallback based; the closest CDP-free approximation.
		err = rp.WaitIdle(p.timeout)
	default:
		err = rp.WaitLoad()
	}
	if err != nil {
		return fmt.Errorf("wait for %s: %w", state, translate(err))
	}
	return nil
}

func (p *page) Screenshot(ctx context.Context, opts entity.ScreenshotOptions) ([]byte, error) {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	data, err := rp.Screenshot(opts.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", translate(err))
	}
	return data, nil
}

func (p *page) VideoPath() (string, error) {
	return "", fmt.Errorf("video: %w", entity.ErrUnsupported)
}

func (p *page) Close() error {
	if p.closed.Swap(true) || p.ctx.alive() != nil {
		return nil
	}
	if err := p.rp.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	return nil
}

// poll re-evaluates cond until it holds or the call's timeout elapses.
func (p *page) poll(ctx context.Context, what string, cond func(*rod.Page) (bool, error)) error {
	rp, cancel, err := p.bound(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	bctx := rp.GetContext()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last error
	for {
		ok, err := cond(rp)
		if ok && err == nil {
			return nil
		}
		if err != nil {
			last = err
		}
		select {
		case <-bctx.Done():
			if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ctx.Err()
			}
			if last != nil {
				return fmt.Errorf("waiting for %s: %w (last error: %v)", what, entity.ErrTimeout, last)
			}
			return fmt.Errorf("waiting for %s: %w", what, entity.ErrTimeout)
		case <-ticker.C:
		}
	}
}

type step struct {
	css   string
	xpath string
	// name narrows css matches by accessible name.
	name string
	// nth picks one match at this step; -1 keeps all.
	nth  int
	desc string
}

func (s step) String() string {
	d := s.desc
	if d == "" {
		d = s.css
		if s.xpath != "" {
			d = "xpath=" + s.xpath
		}
	}
	if s.nth >= 0 {
		d += fmt.Sprintf(" >> nth=%d", s.nth)
	}
	return d
}

type locator struct {
	page  *page
	steps []step
}

func (l *locator) with(last step, appendStep bool) *locator {
	steps := make([]step, len(l.steps), len(l.steps)+1)
	copy(steps, l.steps)
	if appendStep {
		steps = append(steps, last)
	} else {
		steps[len(steps)-1] = last
	}
	return &locator{page: l.page, steps: steps}
}

func (l *locator) First() output.Locator { return l.Nth(0) }

func (l *locator) Nth(index int) output.Locator {
	last := l.steps[len(l.steps)-1]
	if last.nth >= 0 {
		return l.with(step{css: "*", nth: index, desc: ":scope"}, true)
	}
	last.nth = index
	return l.with(last, false)
}

func (l *locator) Locator(css string) output.Locator {
	return l.with(step{css: css, nth: -1}, true)
}

func (l *locator) String() string {
	parts := make([]string, len(l.steps))
	for i, s := range l.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " >> ")
}

// resolve evaluates the locator against the current DOM without waiting.
func (l *locator) resolve(rp *rod.Page) (rod.Elements, error) {
	var current rod.Elements
	for i, s := range l.steps {
		var next rod.Elements
		if i == 0 {
			found, err := s.query(rp, nil)
			if err != nil {
				return nil, err
			}
			next = found
		} else {
			for _, parent := range current {
				found, err := s.query(rp, parent)
				if err != nil {
					return nil, err
				}
				next = append(next, found...)
			}
		}
		if s.name != "" {
			next = filterByName(next, s.name)
		}
		if s.nth >= 0 {
			if s.nth >= len(next) {
				return nil, nil
			}
			next = rod.Elements{next[s.nth]}
		}
		current = next
	}
	return current, nil
}

func (s step) query(rp *rod.Page, parent *rod.Element) (rod.Elements, error) {
	switch {
	case s.xpath != "" && parent == nil:
		return rp.ElementsX(s.xpath)
	case s.xpath != "":
		return parent.ElementsX("." + s.xpath)
	case s.css == "*" && s.desc == ":scope" && parent != nil:
		return rod.Elements{parent}, nil
	case parent == nil:
		return rp.Elements(s.css)
	default:
		return parent.Elements(s.css)
	}
}

func filterByName(els rod.Elements, name string) rod.Elements {
	var kept rod.Elements
	for _, el := range els {
		text, _ := el.Text()
		aria, _ := el.Attribute("aria-label")
		title, _ := el.Attribute("title")
		value, _ := el.Property("value")
		if selector.NameMatches(name, text, ptrToString(aria), ptrToString(title), jsonString(value)) {
			kept = append(kept, el)
		}
	}
	return kept
}

// one waits until the locator resolves to at least one element that
// satisfies ready, and returns the first such element.
func (l *locator) one(ctx context.Context, ready func(*rod.Element) bool) (*rod.Element, error) {
	var found *rod.Element
	err := l.page.poll(ctx, l.String(), func(rp *rod.Page) (bool, error) {
		els, err := l.resolve(rp)
		if err != nil {
			return false, err
		}
		if len(els) == 0 {
			return false, nil
		}
		el := els[0].Context(rp.GetContext())
		if ready != nil && !ready(el) {
			return false, nil
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func visible(el *rod.Element) bool {
	v, err := el.Visible()
	return err == nil && v
}

func (l *locator) Fill(ctx context.Context, value string) error {
	el, err := l.one(ctx, visible)
	if err != nil {
		return fmt.Errorf("field not found: %w", err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input failed: %s: %w", l, translate(err))
	}
	return nil
}

func (l *locator) Click(ctx context.Context) error {
	el, err := l.one(ctx, visible)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %s: %w", l, translate(err))
	}
	return nil
}

func (l *locator) Press(ctx context.Context, key string) error {
	k, err := keyOf(key)
	if err != nil {
		return err
	}
	el, err := l.one(ctx, visible)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus %s: %w", l, translate(err))
	}
	if err := l.page.rp.Keyboard.Type(k); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, translate(err))
	}
	return nil
}

func (l *locator) TextContent(ctx context.Context) (string, error) {
	el, err := l.one(ctx, nil)
	if err != nil {
		return "", err
	}
	v, err := el.Property("textContent")
	if err != nil {
		return "", fmt.Errorf("text of %s: %w", l, translate(err))
	}
	return jsonString(v), nil
}

func (l *locator) InputValue(ctx context.Context) (string, error) {
	el, err := l.one(ctx, nil)
	if err != nil {
		return "", err
	}
	v, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("value of %s: %w", l, translate(err))
	}
	return jsonString(v), nil
}

func (l *locator) IsVisible(ctx context.Context) (bool, error) {
	rp, cancel, err := l.page.bound(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	els, err := l.resolve(rp)
	if err != nil {
		return false, translate(err)
	}
	if len(els) == 0 {
		return false, nil
	}
	return visible(els[0]), nil
}

func (l *locator) Count(ctx context.Context) (int, error) {
	rp, cancel, err := l.page.bound(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	els, err := l.resolve(rp)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", l, translate(err))
	}
	return len(els), nil
}

func (l *locator) WaitFor(ctx context.Context, state entity.ElementState) error {
	return l.page.poll(ctx, fmt.Sprintf("%s to be %s", l, state), func(rp *rod.Page) (bool, error) {
		els, err := l.resolve(rp)
		if err != nil {
			return false, err
		}
		switch state {
		case entity.ElementAttached:
			return len(els) > 0, nil
		case entity.ElementDetached:
			return len(els) == 0, nil
		case entity.ElementHidden:
			return len(els) == 0 || !visible(els[0]), nil
		default:
			return len(els) > 0 && visible(els[0]), nil
		}
	})
}

var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Backspace":  input.Backspace,
	"Delete":     input.Delete,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Home":       input.Home,
	"End":        input.End,
}

func keyOf(name string) (input.Key, error) {
	if k, ok := namedKeys[name]; ok {
		return k, nil
	}
	if r := []rune(name); len(r) == 1 {
		return input.Key(r[0]), nil
	}
	return 0, fmt.Errorf("unknown key %q: %w", name, entity.ErrUnsupported)
}

func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", entity.ErrTimeout, err)
	}
	return err
}

func jsonString(v gson.JSON) string {
	if v.Nil() {
		return ""
	}
	return v.Str()
}

func ptrToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

// httpGet also returns the cookies the final response set.
func httpGet(ctx context.Context, client *http.Client, url string) (*entity.APIResponse, []*http.Cookie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", url, translate(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	return &entity.APIResponse{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, resp.Cookies(), nil
}
