// Package static is a browserless driver: it fetches documents over HTTP,
// parses them with goquery and emulates the handful of interactions the
// suite needs (filling inputs, submitting GET/POST forms, following links).
// Scripts never run, so waits are evaluated once against the fetched DOM.
package static

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

const (
	DriverName = "static"

	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; e2e-static/1.0)"
)

var (
	_ output.Driver         = (*Driver)(nil)
	_ output.Session        = (*session)(nil)
	_ output.BrowserContext = (*browserContext)(nil)
)

type Driver struct {
	log       output.LoggerPort
	transport http.RoundTripper
}

func NewDriver(log output.LoggerPort) *Driver {
	return &Driver{log: log.Named("static")}
}

// WithTransport replaces the HTTP transport of every session launched
// afterwards.
func (d *Driver) WithTransport(rt http.RoundTripper) *Driver {
	d.transport = rt
	return d
}

func (d *Driver) Name() string { return DriverName }

func (d *Driver) Launch(ctx context.Context, opts entity.LaunchOptions) (output.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d.log.Debug("Static session started", "timeout", timeout)
	return &session{transport: d.transport, timeout: timeout}, nil
}

type session struct {
	transport http.RoundTripper
	timeout   time.Duration
	closed    atomic.Bool
}

func (s *session) NewContext(ctx context.Context, opts entity.ContextOptions) (output.BrowserContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, fmt.Errorf("new context: %w", entity.ErrClosed)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	vp := opts.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		vp = entity.DefaultViewport
	}
	return &browserContext{
		session:  s,
		client:   &http.Client{Jar: jar, Transport: s.transport},
		viewport: vp,
	}, nil
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}

// browserContext owns a cookie jar shared by its pages and Get.
type browserContext struct {
	session  *session
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
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(""))
	if err != nil {
		return nil, err
	}
	return &page{owner: c, url: "about:blank", doc: doc, timeout: c.session.timeout}, nil
}

func (c *browserContext) Get(ctx context.Context, url string) (*entity.APIResponse, error) {
	if err := entity.ValidateURL(url); err != nil {
		return nil, err
	}
	if err := c.alive(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, c.session.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	return c.do(req)
}

func (c *browserContext) do(req *http.Request) (*entity.APIResponse, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, translate(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL, translate(err))
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
	}, nil
}

func (c *browserContext) StartTracing(context.Context) error {
	return fmt.Errorf("tracing: %w", entity.ErrUnsupported)
}

func (c *browserContext) StopTracing(context.Context, string) error {
	return fmt.Errorf("tracing: %w", entity.ErrUnsupported)
}

func (c *browserContext) Close() error {
	c.closed.Store(true)
	c.client.CloseIdleConnections()
	return nil
}

// blankScreenshot renders the viewport as an empty white canvas; there is
// no layout engine to paint anything else.
func blankScreenshot(vp entity.Viewport, fullPage bool) ([]byte, error) {
	h := vp.Height
	if fullPage {
		h *= 2
	}
	img := imaging.New(vp.Width, h, color.White)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// withTimeout bounds one request by def, or by ctx when its deadline comes
// sooner.
func withTimeout(ctx context.Context, def time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, def)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
		return fmt.Errorf("%w: %w", entity.ErrTimeout, err)
	}
	return err
}
