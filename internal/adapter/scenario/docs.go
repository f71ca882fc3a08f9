package scenario

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/expect"
	"github.com/jacqt4/PlaywrightTutorial/internal/pages"
)

var (
	titlePattern = regexp.MustCompile("Playwright")
	urlPattern   = regexp.MustCompile(".*playwright.*")
)

func DocsHomepage(t Targets) *Scenario {
	return &Scenario{
		name:        "docs-homepage",
		description: "Open the docs site, check the title and take a screenshot",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Docs); err != nil {
				return err
			}
			if err := expect.Title(ctx, page, titlePattern); err != nil {
				return err
			}
			_, err := env.TakeScreenshot(ctx, "homepage")
			return err
		},
	}
}

func DocsSearch(t Targets) *Scenario {
	return &Scenario{
		name:        "docs-search",
		description: "Type into the docs search dialog",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Docs); err != nil {
				return err
			}
			docs := pages.NewDocsPage(page)
			if err := docs.Search(ctx, "test"); err != nil {
				return err
			}
			return expect.Value(ctx, docs.SearchInput(), "test")
		},
	}
}

func DocsAssertions(t Targets) *Scenario {
	return &Scenario{
		name:        "docs-assertions",
		description: "URL, call to action and title of the docs site",
		run: func(ctx context.Context, env output.ScenarioEnv) error {
			page := env.ActivePage()
			if err := page.Goto(ctx, t.Docs); err != nil {
				return err
			}
			if err := expect.URL(ctx, page, urlPattern); err != nil {
				return err
			}
			if err := expect.Visible(ctx, pages.NewDocsPage(page).GetStarted()); err != nil {
				return err
			}

			title, err := page.Title(ctx)
			if err != nil {
				return err
			}
			return check(strings.Contains(title, "Playwright"), "page title", `to contain "Playwright"`, fmt.Sprintf("%q", title))
		},
	}
}
