package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/htmltext"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/selector"
)

var _ output.Locator = (*locator)(nil)

type step struct {
	css   string
	text  string
	label string
	name  string
	nth   int
	desc  string
	scope bool
}

func (s step) String() string {
	d := s.desc
	if d == "" {
		d = s.css
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
		return l.with(step{scope: true, nth: index, desc: ":scope"}, true)
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

func (l *locator) resolve() *goquery.Selection {
	current := l.page.doc.Selection
	for i, s := range l.steps {
		var next *goquery.Selection
		switch {
		case s.scope:
			next = current
		case s.text != "":
			next = byText(l.page.doc, current, i == 0, s.text)
		case s.label != "":
			next = byLabel(l.page.doc, s.label)
			if i > 0 {
				next = next.FilterFunction(func(_ int, el *goquery.Selection) bool {
					return current.HasSelection(el).Length() > 0
				})
			}
		default:
			next = current.Find(s.css)
		}
		if s.name != "" {
			want := s.name
			next = next.FilterFunction(func(_ int, el *goquery.Selection) bool {
				return selector.NameMatches(want, el.Text(), el.AttrOr("aria-label", ""), el.AttrOr("title", ""), el.AttrOr("value", ""))
			})
		}
		if s.nth >= 0 {
			next = next.Eq(s.nth)
		}
		current = next
	}
	return current
}

// byText returns the innermost elements whose whitespace-normalized text
// contains text, case-insensitively.
func byText(doc *goquery.Document, scope *goquery.Selection, top bool, text string) *goquery.Selection {
	want := strings.ToLower(strings.Join(strings.Fields(text), " "))
	contains := func(s *goquery.Selection) bool {
		got := strings.ToLower(strings.Join(strings.Fields(s.Text()), " "))
		return strings.Contains(got, want)
	}
	root := scope
	if top {
		root = doc.Find("body")
	}
	return root.Find("*").FilterFunction(func(_ int, el *goquery.Selection) bool {
		if !contains(el) {
			return false
		}
		inner := false
		el.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
			inner = contains(c)
			return !inner
		})
		return !inner
	})
}

// byLabel finds controls by aria-label, <label for=id> or a wrapping label.
func byLabel(doc *goquery.Document, text string) *goquery.Selection {
	want := strings.Join(strings.Fields(text), " ")
	found := doc.Find(selector.Label(text).CSS)
	doc.Find("label").Each(func(_ int, lbl *goquery.Selection) {
		if strings.Join(strings.Fields(lbl.Text()), " ") != want {
			return
		}
		if id, ok := lbl.Attr("for"); ok && id != "" {
			found = found.AddSelection(doc.Find("[id]").FilterFunction(func(_ int, el *goquery.Selection) bool {
				return el.AttrOr("id", "") == id
			}))
			return
		}
		found = found.AddSelection(lbl.Find("input, textarea, select"))
	})
	return found
}

// visible reports whether neither el nor any ancestor is hidden.
func visible(el *goquery.Selection) bool {
	if el.Length() == 0 {
		return false
	}
	for n := el.Get(0); n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if n.DataAtom == atom.Head || n.DataAtom == atom.Script || n.DataAtom == atom.Style || htmltext.Hidden(n) {
			return false
		}
	}
	return true
}

// one resolves the locator to its first element. The document never
// changes without an action, so a miss is final.
func (l *locator) one(ctx context.Context, mustBeVisible bool) (*goquery.Selection, error) {
	if err := l.page.check(ctx); err != nil {
		return nil, err
	}
	sel := l.resolve()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("waiting for %s: %w: %w", l, entity.ErrTimeout, entity.ErrNotFound)
	}
	el := sel.First()
	if mustBeVisible && !visible(el) {
		return nil, fmt.Errorf("waiting for %s to be visible: %w", l, entity.ErrTimeout)
	}
	return el, nil
}

func (l *locator) Fill(ctx context.Context, value string) error {
	el, err := l.one(ctx, true)
	if err != nil {
		return fmt.Errorf("field not found: %w", err)
	}
	switch goquery.NodeName(el) {
	case "textarea":
		el.SetText(value)
	case "input":
		el.SetAttr("value", value)
	default:
		if _, ok := el.Attr("contenteditable"); !ok {
			return fmt.Errorf("fill %s: element is not an input", l)
		}
		el.SetText(value)
	}
	l.page.focused = el
	return nil
}

// Click follows links and submits forms through their submit buttons; any
// other element only receives focus.
func (l *locator) Click(ctx context.Context) error {
	el, err := l.one(ctx, true)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}
	l.page.focused = el

	if a := el.Closest("a[href]"); a.Length() > 0 {
		href, _ := a.Attr("href")
		target, err := l.page.resolve(href)
		if err != nil {
			return err
		}
		return l.page.Goto(ctx, target.String())
	}

	if isSubmitter(el) {
		form := el.Closest("form")
		if form.Length() > 0 {
			return l.page.submit(ctx, form, el)
		}
	}
	return nil
}

func isSubmitter(el *goquery.Selection) bool {
	switch goquery.NodeName(el) {
	case "button":
		typ := strings.ToLower(el.AttrOr("type", "submit"))
		return typ == "submit"
	case "input":
		typ := strings.ToLower(el.AttrOr("type", ""))
		return typ == "submit" || typ == "image"
	}
	return false
}

func (l *locator) Press(ctx context.Context, key string) error {
	el, err := l.one(ctx, true)
	if err != nil {
		return fmt.Errorf("element not found: %w", err)
	}
	return l.page.pressOn(ctx, el, key)
}

func (l *locator) TextContent(ctx context.Context) (string, error) {
	el, err := l.one(ctx, false)
	if err != nil {
		return "", err
	}
	return el.Text(), nil
}

func (l *locator) InputValue(ctx context.Context) (string, error) {
	el, err := l.one(ctx, false)
	if err != nil {
		return "", err
	}
	switch goquery.NodeName(el) {
	case "textarea":
		return el.Text(), nil
	case "input":
		return el.AttrOr("value", ""), nil
	case "select":
		opt := el.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = el.Find("option").First()
		}
		return optionValue(opt), nil
	}
	return "", fmt.Errorf("input value of %s: not an input, textarea or select", l)
}

func (l *locator) IsVisible(ctx context.Context) (bool, error) {
	if err := l.page.check(ctx); err != nil {
		return false, err
	}
	return visible(l.resolve().First()), nil
}

func (l *locator) Count(ctx context.Context) (int, error) {
	if err := l.page.check(ctx); err != nil {
		return 0, err
	}
	return l.resolve().Length(), nil
}

func (l *locator) WaitFor(ctx context.Context, state entity.ElementState) error {
	if err := l.page.check(ctx); err != nil {
		return err
	}
	sel := l.resolve()
	var ok bool
	switch state {
	case entity.ElementAttached:
		ok = sel.Length() > 0
	case entity.ElementDetached:
		ok = sel.Length() == 0
	case entity.ElementHidden:
		ok = !visible(sel.First())
	default:
		ok = visible(sel.First())
	}
	if ok {
		return nil
	}
	return fmt.Errorf("waiting for %s to be %s: %w", l, state, entity.ErrTimeout)
}
