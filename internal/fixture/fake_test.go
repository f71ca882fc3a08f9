package fixture

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

// recorder collects lifecycle events from the fake driver in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// fakeDriver implements the browser ports in memory. The fail* fields
// inject errors at the matching step.
type fakeDriver struct {
	rec *recorder

	failLaunch, failContext, failPage error
	failPageClose, failContextClose    error
	tracing, video                     bool

	gotLaunch  entity.LaunchOptions
	gotContext entity.ContextOptions
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{rec: &recorder{}}
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Launch(_ context.Context, opts entity.LaunchOptions) (output.Session, error) {
	d.gotLaunch = opts
	if d.failLaunch != nil {
		return nil, d.failLaunch
	}
	d.rec.add("launch")
	return &fakeSession{d: d}, nil
}

type fakeSession struct{ d *fakeDriver }

func (s *fakeSession) NewContext(_ context.Context, opts entity.ContextOptions) (output.BrowserContext, error) {
	s.d.gotContext = opts
	if s.d.failContext != nil {
		return nil, s.d.failContext
	}
	s.d.rec.add("context")
	return &fakeContext{d: s.d}, nil
}

func (s *fakeSession) Close() error {
	s.d.rec.add("close session")
	return nil
}

type fakeContext struct{ d *fakeDriver }

func (c *fakeContext) NewPage(context.Context) (output.Page, error) {
	if c.d.failPage != nil {
		return nil, c.d.failPage
	}
	c.d.rec.add("page")
	return &fakePage{d: c.d}, nil
}

func (c *fakeContext) Get(context.Context, string) (*entity.APIResponse, error) {
	return &entity.APIResponse{StatusCode: 200}, nil
}

func (c *fakeContext) StartTracing(context.Context) error {
	if !c.d.tracing {
		return entity.ErrUnsupported
	}
	c.d.rec.add("start tracing")
	return nil
}

func (c *fakeContext) StopTracing(_ context.Context, path string) error {
	c.d.rec.add("stop tracing " + path)
	return nil
}

func (c *fakeContext) Close() error {
	c.d.rec.add("close context")
	return c.d.failContextClose
}

type fakePage struct {
	output.Page // unimplemented methods panic
	d           *fakeDriver
}

func (p *fakePage) Screenshot(context.Context, entity.ScreenshotOptions) ([]byte, error) {
	return pngBytes, nil
}

func (p *fakePage) VideoPath() (string, error) {
	if !p.d.video {
		return "", entity.ErrUnsupported
	}
	return "test-videos/page@1.webm", nil
}

func (p *fakePage) Close() error {
	p.d.rec.add("close page")
	return p.d.failPageClose
}

var errBoom = errors.New("boom")

// pngBytes is a 64x32 white PNG.
var pngBytes = func() []byte {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(64, 32, color.White), imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()
