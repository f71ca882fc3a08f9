package pages

import (
	"context"
	"fmt"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

// DocsPage is the landing page of a documentation site with a search
// dialog.
type DocsPage struct {
	page output.Page
}

func NewDocsPage(page output.Page) *DocsPage {
	return &DocsPage{page: page}
}

func (d *DocsPage) SearchButton() output.Locator {
	return d.page.GetByRole(entity.RoleButton, "Search")
}

func (d *DocsPage) SearchInput() output.Locator {
	return d.page.GetByPlaceholder("Search docs")
}

func (d *DocsPage) GetStarted() output.Locator {
	return d.page.GetByText("Get started").First()
}

// Search opens the search dialog and types query without submitting it.
func (d *DocsPage) Search(ctx context.Context, query string) error {
	if err := d.SearchButton().Click(ctx); err != nil {
		return fmt.Errorf("open search: %w", err)
	}
	if err := d.SearchInput().Fill(ctx, query); err != nil {
		return fmt.Errorf("fill search: %w", err)
	}
	return nil
}
