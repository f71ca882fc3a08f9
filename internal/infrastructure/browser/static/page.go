package static

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/glob"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/selector"
)

var _ output.Page = (*page)(nil)

type page struct {
	owner   *browserContext
	timeout time.Duration
	closed  atomic.Bool

	// focused is the element that last received input; Page.Press acts
	// on it.
	focused *goquery.Selection

	url string
	doc *goquery.Document
}

func (p *page) alive() error {
	if p.closed.Load() {
		return entity.ErrClosed
	}
	return p.owner.alive()
}

func (p *page) Goto(ctx context.Context, rawURL string) error {
	if err := entity.ValidateURL(rawURL); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.alive(); err != nil {
		return err
	}
	if rawURL == "about:blank" {
		return p.load(rawURL, "")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("navigate to %s: %w", u.Scheme, entity.ErrUnsupported)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	return p.navigate(req)
}

// navigate performs req and replaces the document with the response body.
// Non-2xx responses still load, as in a browser.
func (p *page) navigate(req *http.Request) error {
	resp, err := p.owner.do(req)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	loc := resp.URL
	if u, err := url.Parse(loc); err == nil && u.Path == "" {
		u.Path = "/"
		loc = u.String()
	}
	return p.load(loc, string(resp.Body))
}

func (p *page) load(u, body string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", u, err)
	}
	p.url = u
	p.doc = doc
	p.focused = nil
	return nil
}

func (p *page) URL() string { return p.url }

func (p *page) Title(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

func (p *page) Content(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	return p.doc.Html()
}

func (p *page) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.alive()
}

func (p *page) Locator(css string) output.Locator {
	return &locator{page: p, steps: []step{{css: css, nth: -1}}}
}

func (p *page) GetByRole(role entity.Role, name string) output.Locator {
	q := selector.Role(role, name)
	return &locator{page: p, steps: []step{{css: q.CSS, name: q.Name, nth: -1, desc: fmt.Sprintf("role=%s[name=%q]", role, name)}}}
}

func (p *page) GetByLabel(text string) output.Locator {
	return &locator{page: p, steps: []step{{label: text, nth: -1, desc: fmt.Sprintf("label=%q", text)}}}
}

func (p *page) GetByPlaceholder(text string) output.Locator {
	return &locator{page: p, steps: []step{{css: selector.Placeholder(text).CSS, nth: -1}}}
}

func (p *page) GetByText(text string) output.Locator {
	return &locator{page: p, steps: []step{{text: text, nth: -1, desc: fmt.Sprintf("text=%q", text)}}}
}

func (p *page) Press(ctx context.Context, key string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if p.focused == nil {
		return nil
	}
	return p.pressOn(ctx, p.focused, key)
}

// pressOn submits the enclosing form on Enter; other keys have no effect
// without a script engine.
func (p *page) pressOn(ctx context.Context, el *goquery.Selection, key string) error {
	p.focused = el
	if key != "Enter" {
		return nil
	}
	form := el.Closest("form")
	if form.Length() == 0 {
		return nil
	}
	return p.submit(ctx, form, nil)
}

func (p *page) WaitForURL(ctx context.Context, pattern string) error {
	if _, err := glob.Compile(pattern); err != nil {
		return err
	}
	if err := p.check(ctx); err != nil {
		return err
	}
	if glob.Match(pattern, p.url) {
		return nil
	}
	return fmt.Errorf("waiting for url %q (at %s): %w", pattern, p.url, entity.ErrTimeout)
}

// WaitForLoadState returns at once: documents are fully parsed on arrival.
func (p *page) WaitForLoadState(ctx context.Context, _ entity.LoadState) error {
	return p.check(ctx)
}

func (p *page) Screenshot(ctx context.Context, opts entity.ScreenshotOptions) ([]byte, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	return blankScreenshot(p.owner.viewport, opts.FullPage)
}

func (p *page) VideoPath() (string, error) {
	return "", fmt.Errorf("video: %w", entity.ErrUnsupported)
}

func (p *page) Close() error {
	p.closed.Store(true)
	return nil
}

// submit sends form the way a browser would, including the submitter's
// name/value pair when it has one.
func (p *page) submit(ctx context.Context, form, submitter *goquery.Selection) error {
	values := formValues(form, submitter)

	action, _ := form.Attr("action")
	target, err := p.resolve(action)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	method, _ := form.Attr("method")
	var req *http.Request
	if strings.EqualFold(method, http.MethodPost) {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(values.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		target.RawQuery = values.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	return p.navigate(req)
}

func (p *page) resolve(ref string) (*url.URL, error) {
	base, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	rel, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	return base.ResolveReference(rel), nil
}

func formValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, s *goquery.Selection) {
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		name, _ := s.Attr("name")
		switch goquery.NodeName(s) {
		case "textarea":
			values.Add(name, textareaValue(s))
		case "select":
			opt := s.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = s.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Add(name, optionValue(opt))
			}
		default:
			typ := strings.ToLower(s.AttrOr("type", "text"))
			switch typ {
			case "submit", "button", "reset", "image":
				return
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				values.Add(name, s.AttrOr("value", "on"))
			default:
				values.Add(name, s.AttrOr("value", ""))
			}
		}
	})
	if submitter != nil {
		if name, ok := submitter.Attr("name"); ok && name != "" {
			values.Add(name, submitter.AttrOr("value", ""))
		}
	}
	return values
}

func textareaValue(s *goquery.Selection) string {
	return s.Text()
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}
