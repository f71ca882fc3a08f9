package expect

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

// countingLocator reports a count that grows by one per call. Methods the
// assertions never use return zero values.
type countingLocator struct {
	calls atomic.Int32
	err   error
}

var _ output.Locator = (*countingLocator)(nil)

func (l *countingLocator) First() output.Locator { return l }

func (l *countingLocator) Nth(int) output.Locator { return l }

func (l *countingLocator) Locator(string) output.Locator { return l }

func (l *countingLocator) Fill(context.Context, string) error { return nil }

func (l *countingLocator) Click(context.Context) error { return nil }

func (l *countingLocator) Press(context.Context, string) error { return nil }

func (l *countingLocator) TextContent(context.Context) (string, error) { return "", l.err }

func (l *countingLocator) WaitFor(context.Context, entity.ElementState) error { return l.err }

func (l *countingLocator) Count(context.Context) (int, error) {
	n := l.calls.Add(1)
	return int(n), l.err
}

func (l *countingLocator) InputValue(context.Context) (string, error) {
	return "draft", l.err
}

func (l *countingLocator) IsVisible(context.Context) (bool, error) {
	return l.calls.Add(1) > 2, nil
}

func (l *countingLocator) String() string { return "#items li" }

type stubPage struct {
	output.Page
	title string
	url   string
}

func (p *stubPage) Title(context.Context) (string, error) { return p.title, nil }
func (p *stubPage) URL() string                            { return p.url }

func short(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestCount_RetriesUntilSatisfied(t *testing.T) {
	loc := &countingLocator{}

	require.NoError(t, Count(context.Background(), loc, 3))
	assert.Equal(t, int32(3), loc.calls.Load())
}

func TestVisible_Retries(t *testing.T) {
	require.NoError(t, Visible(context.Background(), &countingLocator{}))
}

func TestValue_Mismatch(t *testing.T) {
	err := Value(short(t), &countingLocator{}, "final")

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "#items li", mismatch.Subject)
	assert.Equal(t, `"draft"`, mismatch.Actual)
	assert.True(t, IsMismatch(err))
	assert.EqualError(t, err, `#items li: expected value "final", got "draft"`)
}

func TestCount_KeepsLastReadError(t *testing.T) {
	boom := errors.New("detached")
	err := CountAtLeast(short(t), &countingLocator{err: boom}, 1)

	assert.True(t, IsMismatch(err))
	assert.ErrorIs(t, err, boom)
}

func TestClosedTargetIsNotAMismatch(t *testing.T) {
	err := Count(short(t), &countingLocator{err: entity.ErrClosed}, 10)

	assert.ErrorIs(t, err, entity.ErrClosed)
	assert.False(t, IsMismatch(err))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := Count(ctx, &countingLocator{}, -1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTitleAndURL(t *testing.T) {
	page := &stubPage{title: "Fast and reliable testing | Playwright", url: "https://playwright.dev/"}

	assert.NoError(t, Title(short(t), page, regexp.MustCompile("Playwright")))
	assert.NoError(t, URL(short(t), page, regexp.MustCompile(".*playwright.*")))

	err := Title(short(t), page, regexp.MustCompile("^Bing$"))
	assert.EqualError(t, err, `page title: expected to match /^Bing$/, got "Fast and reliable testing | Playwright"`)
}

func TestPoll_LongDeadlineKeepsAssertionTimeout(t *testing.T) {
	defer func(d time.Duration) { timeout = d }(timeout)
	timeout = 200 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	err := Value(ctx, &countingLocator{}, "final")

	assert.True(t, IsMismatch(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NoError(t, ctx.Err(), "the outer deadline is left intact")
}

func TestPoll_ShortDeadlineWins(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Count(ctx, &countingLocator{}, -1)

	assert.True(t, IsMismatch(err))
	assert.Less(t, time.Since(start), DefaultTimeout)
}
