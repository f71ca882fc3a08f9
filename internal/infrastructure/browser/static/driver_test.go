package static

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/logger"
)

const formHTML = `<!DOCTYPE html>
<html>
<head><title> Search Form </title></head>
<body>
	<form action="/search" method="get">
		<label for="q">Query</label>
		<input id="q" type="text" name="q" placeholder="Search docs" />
		<input type="hidden" name="src" value="form" />
		<input type="checkbox" name="safe" value="1" />
		<label>Notes <textarea name="notes"></textarea></label>
		<button type="submit" name="go" value="1">Search</button>
	</form>
	<a id="about" href="/about">About us</a>
</body>
</html>`

const resultsHTML = `<!DOCTYPE html>
<html>
<head><title>Results</title></head>
<body>
	<ol id="results">
		<li class="hit"><h2><a href="/a">Alpha result</a></h2></li>
		<li class="hit"><h2><a href="/b">Beta result</a></h2></li>
		<li class="hit" style="display: none"><h2><a href="/c">Hidden result</a></h2></li>
	</ol>
</body>
</html>`

func newServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, formHTML)
		case "/search":
			queries = append(queries, r.URL.RawQuery)
			fmt.Fprint(w, resultsHTML)
		case "/about", "/a":
			fmt.Fprintf(w, "<html><head><title>%s</title></head><body>ok</body></html>", r.URL.Path)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func newPage(t *testing.T) (output.BrowserContext, output.Page) {
	t.Helper()
	ctx := context.Background()
	sess, err := NewDriver(logger.NewTestLogger(t)).Launch(ctx, entity.LaunchOptions{Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	bc, err := sess.NewContext(ctx, entity.ContextOptions{Viewport: entity.Viewport{Width: 320, Height: 200}})
	require.NoError(t, err)
	page, err := bc.NewPage(ctx)
	require.NoError(t, err)
	return bc, page
}

func TestPage_GotoAndTitle(t *testing.T) {
	srv, _ := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	assert.Equal(t, "about:blank", page.URL())
	require.NoError(t, page.Goto(ctx, srv.URL))

	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Search Form", title)
	assert.Equal(t, srv.URL+"/", page.URL())
}

func TestPage_Goto_Rejects(t *testing.T) {
	_, page := newPage(t)
	ctx := context.Background()

	assert.ErrorIs(t, page.Goto(ctx, "javascript:alert(1)"), entity.ErrInvalidURL)
	assert.ErrorIs(t, page.Goto(ctx, "file:///etc/hosts"), entity.ErrUnsupported)
}

func TestPage_FillAndEnterSubmitsForm(t *testing.T) {
	srv, queries := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, srv.URL))
	box := page.GetByPlaceholder("Search docs")
	require.NoError(t, box.Fill(ctx, "go modules"))

	value, err := box.InputValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "go modules", value)

	require.NoError(t, page.Press(ctx, "Enter"))
	require.NoError(t, page.WaitForURL(ctx, "**/search?**"))
	require.Len(t, *queries, 1)
	assert.Equal(t, "notes=&q=go+modules&src=form", (*queries)[0])
}

func TestLocator_ClickSubmitIncludesSubmitter(t *testing.T) {
	srv, queries := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, srv.URL))
	require.NoError(t, page.GetByLabel("Query").Fill(ctx, "x"))
	require.NoError(t, page.GetByLabel("Notes").Fill(ctx, "n"))
	require.NoError(t, page.GetByRole(entity.RoleButton, "search").Click(ctx))

	require.Len(t, *queries, 1)
	assert.Equal(t, "go=1&notes=n&q=x&src=form", (*queries)[0])
}

func TestLocator_ClickFollowsLinks(t *testing.T) {
	srv, _ := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, srv.URL))
	require.NoError(t, page.GetByText("about us").Click(ctx))

	assert.Equal(t, srv.URL+"/about", page.URL())
	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/about", title)
}

func TestLocator_Results(t *testing.T) {
	srv, _ := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, srv.URL+"/search?q=x"))
	hits := page.Locator("#results li.hit")

	n, err := hits.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	text, err := hits.First().Locator("h2 a").TextContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha result", text)

	visible, err := hits.Nth(2).IsVisible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)

	assert.NoError(t, hits.First().WaitFor(ctx, entity.ElementVisible))
	assert.NoError(t, hits.Nth(2).WaitFor(ctx, entity.ElementHidden))
	assert.NoError(t, page.Locator("#missing").WaitFor(ctx, entity.ElementDetached))
}

func TestLocator_MissReportsTimeout(t *testing.T) {
	srv, _ := newServer(t)
	_, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, page.Goto(ctx, srv.URL))

	err := page.Locator("#missing").Click(ctx)
	assert.ErrorIs(t, err, entity.ErrTimeout)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Contains(t, err.Error(), "#missing")

	err = page.Locator("input[name=src]").Fill(ctx, "x")
	assert.ErrorIs(t, err, entity.ErrTimeout)

	err = page.WaitForURL(ctx, "**/never")
	assert.ErrorIs(t, err, entity.ErrTimeout)
}

func TestPage_Screenshot(t *testing.T) {
	_, page := newPage(t)

	data, err := page.Screenshot(context.Background(), entity.ScreenshotOptions{})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestBrowserContext_GetAndUnsupported(t *testing.T) {
	srv, _ := newServer(t)
	bc, page := newPage(t)
	ctx := context.Background()

	resp, err := bc.Get(ctx, srv.URL+"/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())

	assert.ErrorIs(t, bc.StartTracing(ctx), entity.ErrUnsupported)
	_, err = page.VideoPath()
	assert.ErrorIs(t, err, entity.ErrUnsupported)
}

func TestClosedChain(t *testing.T) {
	bc, page := newPage(t)
	ctx := context.Background()

	require.NoError(t, bc.Close())
	_, err := page.Title(ctx)
	assert.ErrorIs(t, err, entity.ErrClosed)
	_, err = bc.NewPage(ctx)
	assert.ErrorIs(t, err, entity.ErrClosed)
}

func TestCancelledContext(t *testing.T) {
	_, page := newPage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, page.Goto(ctx, "http://127.0.0.1:1/"), context.Canceled)
	_, err := page.Locator("a").Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout_LongDeadlineKeepsDefault(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ctx, cancelReq := withTimeout(parent, 3*time.Second)
	defer cancelReq()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(3*time.Second), deadline, time.Second)
}

func TestPage_GotoTimeoutUnderRunDeadline(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	sess, err := NewDriver(logger.NewNop()).Launch(context.Background(), entity.LaunchOptions{Timeout: 200 * time.Millisecond})
	require.NoError(t, err)
	bc, err := sess.NewContext(context.Background(), entity.ContextOptions{})
	require.NoError(t, err)
	page, err := bc.NewPage(context.Background())
	require.NoError(t, err)

	run, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	err = page.Goto(run, slow.URL)
	assert.ErrorIs(t, err, entity.ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.NoError(t, run.Err())
}
