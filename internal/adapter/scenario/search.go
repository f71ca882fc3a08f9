package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
	"github.com/jacqt4/PlaywrightTutorial/internal/expect"
	"github.com/jacqt4/PlaywrightTutorial/internal/infrastructure/browser/htmltext"
	"github.com/jacqt4/PlaywrightTutorial/internal/pages"
)

const (
	bingQuery   = "Playwright C#"
	googleQuery = "Playwright testing"
	inputQuery  = "Playwright testing"
)

func GoogleTitle(t Targets) *Scenario {
	return &Scenario{
		name:        "google-title",
		description: "Open Google and check the title",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Google); err != nil {
				return err
			}
			title, err := page.Title(ctx)
			if err != nil {
				return err
			}
			return check(strings.Contains(title, "Google"), "page title", `to contain "Google"`, fmt.Sprintf("%q", title))
		},
	}
}

func GoogleSearch(t Targets) *Scenario {
	return &Scenario{
		name:        "google-search",
		description: "Search Google and wait for the results container",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Google); err != nil {
				return err
			}
			home := pages.NewHomePageFor(page, pages.Google)
			if err := home.Search(ctx, googleQuery); err != nil {
				return err
			}

			results := pages.NewResultsPageFor(page, pages.Google).ResultsList()
			if err := results.WaitFor(ctx, entity.ElementVisible); err != nil {
				return err
			}
			visible, err := results.IsVisible(ctx)
			if err != nil {
				return err
			}
			return check(visible, results.String(), "visible", "hidden")
		},
	}
}

// BingSearch waits on the URL rather than on result visibility, since
// Bing keeps parts of the result list hidden.
func BingSearch(t Targets) *Scenario {
	return &Scenario{
		name:        "bing-search",
		description: "Search Bing and count result entries",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Bing); err != nil {
				return err
			}
			if err := page.Locator(pages.Bing.SearchBox).Fill(ctx, bingQuery); err != nil {
				return err
			}
			if err := page.Press(ctx, "Enter"); err != nil {
				return err
			}
			if err := page.WaitForURL(ctx, pages.Bing.ResultsURL); err != nil {
				return err
			}

			n, err := page.Locator("#b_results li").Count(ctx)
			if err != nil {
				return err
			}
			return check(n > 0, "#b_results li", "at least one result", n)
		},
	}
}

func BingFirstResult(t Targets) *Scenario {
	return &Scenario{
		name:        "bing-first-result",
		description: "Search Bing, follow the first result and leave Bing",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Bing); err != nil {
				return err
			}
			if err := page.Locator(pages.Bing.SearchBox).Fill(ctx, bingQuery); err != nil {
				return err
			}
			if err := page.Press(ctx, "Enter"); err != nil {
				return err
			}
			if err := page.WaitForURL(ctx, pages.Bing.ResultsURL); err != nil {
				return err
			}

			if err := page.Locator(pages.Bing.ResultLink).First().Click(ctx); err != nil {
				return err
			}
			if err := page.WaitForLoadState(ctx, entity.LoadStateDOMContentLoaded); err != nil {
				return err
			}

			title, err := page.Title(ctx)
			if err != nil {
				return err
			}
			if err := check(title != "", "page title", "not empty", `""`); err != nil {
				return err
			}
			return check(!strings.Contains(strings.ToLower(title), "bing"), "page title", `not to mention "bing"`, fmt.Sprintf("%q", title))
		},
	}
}

func BingPageObject(t Targets) *Scenario {
	return &Scenario{
		name:        "bing-page-object",
		description: "Search Bing through the home page object",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Bing); err != nil {
				return err
			}
			return pages.NewHomePage(page).Search(ctx, bingQuery)
		},
	}
}

func BingFirstResultText(t Targets) *Scenario {
	return &Scenario{
		name:        "bing-first-result-text",
		description: "Search Bing through page objects and inspect the first result",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Bing); err != nil {
				return err
			}
			results, err := pages.NewHomePage(page).SearchAndWaitForResults(ctx, bingQuery)
			if err != nil {
				return err
			}

			text, err := results.GetFirstResultText(ctx)
			if err != nil {
				return err
			}
			if err := check(len(text) > 5, "first result text", "more than 5 characters", fmt.Sprintf("%q", text)); err != nil {
				return err
			}

			n, err := results.GetResultsCount(ctx)
			if err != nil {
				return err
			}
			return check(n > 0, "results count", "> 0", n)
		},
	}
}

// SearchInputValue searches without waiting for results; the box must
// hold the query whether or not the results page has loaded yet.
func SearchInputValue(t Targets) *Scenario {
	return &Scenario{
		name:        "search-input-value",
		description: "The search box keeps the query after searching",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Bing); err != nil {
				return err
			}
			home := pages.NewHomePage(page)
			if err := home.Search(ctx, inputQuery); err != nil {
				return err
			}
			return expect.Value(ctx, home.SearchBox(), inputQuery)
		},
	}
}

// BingReachable checks the search engine over plain HTTP, without the UI.
func BingReachable(t Targets) *Scenario {
	return &Scenario{
		name:        "bing-reachable",
		description: "Bing answers an HTTP GET with a titled page",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			resp, err := env.BrowserContext().Get(ctx, t.Bing)
			if err != nil {
				return err
			}
			if err := check(resp.OK(), "GET "+t.Bing, "2xx status", resp.StatusCode); err != nil {
				return err
			}
			title := htmltext.Title(string(resp.Body))
			env.Logger().Debug("Reachable", "url", resp.URL, "title", title, "preview", htmltext.Preview(string(resp.Body), 80))
			return check(strings.Contains(strings.ToLower(title), "bing"), "document title", `to contain "bing"`, fmt.Sprintf("%q", title))
		},
	}
}
