// Package testsite serves small, deterministic stand-ins for the public
// sites the scenarios visit: a Bing-like and a Google-like search engine
// and a documentation landing page.
package testsite

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

// NoResultsQuery is a query the search engines answer with an empty list.
const NoResultsQuery = "zzzz-no-results"

// ResultsPerPage is the number of results returned for any other query.
const ResultsPerPage = 8

const docsTitle = "Fast and reliable end-to-end testing for modern web apps | Playwright"

type result struct {
	Title   string
	Href    string
	Snippet string
}

type searchView struct {
	Title   string
	Query   string
	Results []result
}

// EnvAccessLog turns on request logging for binaries that start the site.
const EnvAccessLog = "TESTSITE_ACCESS_LOG"

type Options struct {
	// AccessLog turns on httplog request logging.
	AccessLog bool
}

// Handler returns the site's router.
func Handler(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.AccessLog {
		logger := httplog.NewLogger("testsite", httplog.Options{JSON: true, Concise: true})
		r.Use(httplog.RequestLogger(logger))
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/bing/", http.StatusFound)
	})

	r.Route("/bing", func(r chi.Router) {
		r.Get("/", render(bingHome, func(*http.Request) any {
			return searchView{Title: "Bing"}
		}))
		r.Get("/search", render(bingResults, func(req *http.Request) any {
			return search(req.URL.Query().Get("q"), "Search")
		}))
	})

	r.Route("/google", func(r chi.Router) {
		r.Get("/", render(googleHome, func(*http.Request) any {
			return searchView{Title: "Google"}
		}))
		r.Get("/search", render(googleResults, func(req *http.Request) any {
			return search(req.URL.Query().Get("q"), "Google Search")
		}))
	})

	r.Route("/playwright", func(r chi.Router) {
		r.Get("/", render(docsHome, func(*http.Request) any {
			return searchView{Title: docsTitle}
		}))
		r.Get("/docs/intro", render(docsIntro, func(*http.Request) any {
			return searchView{Title: "Installation | Playwright"}
		}))
	})

	r.Get("/article/{n}", func(w http.ResponseWriter, req *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(req, "n"))
		if err != nil || n < 1 {
			http.NotFound(w, req)
			return
		}
		q := req.URL.Query().Get("q")
		writePage(w, article, articleFor(q, n))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// Start serves Handler on a loopback port until the returned server is
// closed.
func Start(opts Options) *httptest.Server {
	return httptest.NewServer(Handler(opts))
}

func render(t *template.Template, data func(*http.Request) any) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writePage(w, t, data(req))
	}
}

func writePage(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func search(q, engine string) searchView {
	q = strings.TrimSpace(q)
	view := searchView{Title: fmt.Sprintf("%s - %s", q, engine), Query: q}
	if q == "" || q == NoResultsQuery {
		return view
	}
	for i := 1; i <= ResultsPerPage; i++ {
		view.Results = append(view.Results, articleFor(q, i))
	}
	return view
}

func articleFor(q string, n int) result {
	if q == "" {
		q = "Untitled"
	}
	return result{
		Title:   fmt.Sprintf("%s: guide part %d", q, n),
		Href:    fmt.Sprintf("/article/%d?q=%s", n, template.URLQueryEscaper(q)),
		Snippet: fmt.Sprintf("Everything about %s, chapter %d.", q, n),
	}
}
