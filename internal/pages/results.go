package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

type ResultsPage struct {
	page output.Page
	site Site
}

func NewResultsPage(page output.Page) *ResultsPage {
	return NewResultsPageFor(page, Bing)
}

func NewResultsPageFor(page output.Page, site Site) *ResultsPage {
	return &ResultsPage{page: page, site: site}
}

func (r *ResultsPage) ResultsList() output.Locator {
	return r.page.Locator(r.site.ResultsList)
}

func (r *ResultsPage) FirstResult() output.Locator {
	return r.page.Locator(r.site.ResultLink).First()
}

// GetFirstResultText returns the trimmed text of the first result link, or
// "" when there are no results.
func (r *ResultsPage) GetFirstResultText(ctx context.Context) (string, error) {
	n, err := r.page.Locator(r.site.ResultLink).Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count results: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	text, err := r.FirstResult().TextContent(ctx)
	if err != nil {
		return "", fmt.Errorf("first result text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ClickFirstResult follows the first result and waits for the target's DOM.
func (r *ResultsPage) ClickFirstResult(ctx context.Context) error {
	if err := r.FirstResult().Click(ctx); err != nil {
		return fmt.Errorf("click first result: %w", err)
	}
	if err := r.page.WaitForLoadState(ctx, entity.LoadStateDOMContentLoaded); err != nil {
		return fmt.Errorf("wait for result page: %w", err)
	}
	return nil
}

// GetResultsCount counts result items as the page stands; it does not wait.
func (r *ResultsPage) GetResultsCount(ctx context.Context) (int, error) {
	n, err := r.page.Locator(r.site.ResultItem).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}
