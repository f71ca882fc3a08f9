package pages

import (
	"context"
	"fmt"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
)

type HomePage struct {
	page output.Page
	site Site
}

// NewHomePage binds the Bing profile to page.
func NewHomePage(page output.Page) *HomePage {
	return NewHomePageFor(page, Bing)
}

func NewHomePageFor(page output.Page, site Site) *HomePage {
	return &HomePage{page: page, site: site}
}

func (h *HomePage) SearchBox() output.Locator {
	return h.page.Locator(h.site.SearchBox)
}

// Search types text into the search box and presses Enter. It does not
// wait for the results to load.
func (h *HomePage) Search(ctx context.Context, text string) error {
	box := h.SearchBox()
	if err := box.Fill(ctx, text); err != nil {
		return fmt.Errorf("fill search box: %w", err)
	}
	if err := h.page.Press(ctx, "Enter"); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	return nil
}

// SearchAndWaitForResults searches and returns once the URL shows a
// results page.
func (h *HomePage) SearchAndWaitForResults(ctx context.Context, text string) (*ResultsPage, error) {
	if err := h.Search(ctx, text); err != nil {
		return nil, err
	}
	if err := h.page.WaitForURL(ctx, h.site.ResultsURL); err != nil {
		return nil, fmt.Errorf("wait for results: %w", err)
	}
	return NewResultsPageFor(h.page, h.site), nil
}
