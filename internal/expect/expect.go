// Package expect provides retrying assertions on pages and locators. Each
// assertion re-reads the page until the condition holds or the timeout
// elapses, then reports the last value it saw.
package expect

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

const (
	DefaultTimeout = 5 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// MismatchError is an assertion failure: the expected state was never
// observed before the timeout.
type MismatchError struct {
	Subject  string
	Expected string
	Actual   string
	// Err is the last error from reading the subject, if any.
	Err error
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: expected %s, got %s", e.Subject, e.Expected, e.Actual)
	if e.Err != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.Err)
	}
	return msg
}

func (e *MismatchError) Unwrap() error { return e.Err }

// IsMismatch reports whether err is an assertion failure rather than an
// infrastructure error.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// timeout bounds every assertion. A shorter deadline on ctx still wins.
var timeout = DefaultTimeout

// sample reads the current value and reports whether it satisfies the
// expectation.
type sample func(ctx context.Context) (actual string, ok bool, err error)

func poll(ctx context.Context, subject, expected string, read sample) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	actual := "<nothing>"
	var lastErr error
	for {
		got, ok, err := read(ctx)
		switch {
		case err == nil && ok:
			return nil
		case err == nil:
			actual, lastErr = got, nil
		case errors.Is(err, entity.ErrClosed), errors.Is(err, context.Canceled):
			return err
		default:
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			return &MismatchError{Subject: subject, Expected: expected, Actual: actual, Err: lastErr}
		case <-ticker.C:
		}
	}
}

// Title waits for the page title to match re.
func Title(ctx context.Context, page output.Page, re *regexp.Regexp) error {
	return poll(ctx, "page title", fmt.Sprintf("to match /%s/", re), func(ctx context.Context) (string, bool, error) {
		title, err := page.Title(ctx)
		return fmt.Sprintf("%q", title), err == nil && re.MatchString(title), err
	})
}

// URL waits for the page URL to match re.
func URL(ctx context.Context, page output.Page, re *regexp.Regexp) error {
	return poll(ctx, "page url", fmt.Sprintf("to match /%s/", re), func(context.Context) (string, bool, error) {
		u := page.URL()
		return fmt.Sprintf("%q", u), re.MatchString(u), nil
	})
}

// Value waits for an input's value to equal want.
func Value(ctx context.Context, loc output.Locator, want string) error {
	return poll(ctx, loc.String(), fmt.Sprintf("value %q", want), func(ctx context.Context) (string, bool, error) {
		v, err := loc.InputValue(ctx)
		return fmt.Sprintf("%q", v), err == nil && v == want, err
	})
}

func Visible(ctx context.Context, loc output.Locator) error {
	return poll(ctx, loc.String(), "visible", func(ctx context.Context) (string, bool, error) {
		v, err := loc.IsVisible(ctx)
		if v {
			return "visible", true, err
		}
		return "hidden", false, err
	})
}

// Count waits for the locator to match exactly want elements.
func Count(ctx context.Context, loc output.Locator, want int) error {
	return poll(ctx, loc.String(), fmt.Sprintf("count %d", want), func(ctx context.Context) (string, bool, error) {
		n, err := loc.Count(ctx)
		return fmt.Sprint(n), err == nil && n == want, err
	})
}

// CountAtLeast waits for the locator to match min or more elements.
func CountAtLeast(ctx context.Context, loc output.Locator, min int) error {
	return poll(ctx, loc.String(), fmt.Sprintf("count >= %d", min), func(ctx context.Context) (string, bool, error) {
		n, err := loc.Count(ctx)
		return fmt.Sprint(n), err == nil && n >= min, err
	})
}
