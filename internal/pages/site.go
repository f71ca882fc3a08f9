// Package pages holds page objects: named locators plus the few actions a
// scenario performs on a page. A page object never owns its page.
package pages

// Site describes where a search engine keeps its search box and results.
type Site struct {
	Name string

	SearchBox string
	// ResultsURL is the glob the URL matches once results are showing.
	ResultsURL  string
	ResultsList string
	ResultItem  string
	ResultLink  string
}

var (
	Bing = Site{
		Name:        "bing",
		SearchBox:   "input[name='q']",
		ResultsURL:  "**/search?**",
		ResultsList: "#b_results",
		ResultItem:  "#b_results li.b_algo",
		ResultLink:  "#b_results li.b_algo h2 a",
	}

	Google = Site{
		Name:        "google",
		SearchBox:   "textarea[name='q']",
		ResultsURL:  "**/search?**",
		ResultsList: "#search",
		ResultItem:  "#search div.g",
		ResultLink:  "#search div.g a h3",
	}
)
