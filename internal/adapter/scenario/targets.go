package scenario

import "strings"

// Targets are the entry URLs the scenarios navigate to.
type Targets struct {
	Bing   string
	Google string
	Docs   string
}

func LiveTargets() Targets {
	return Targets{
		Bing:   "https://www.bing.com",
		Google: "https://www.google.com",
		Docs:   "https://playwright.dev",
	}
}

// LocalTargets points every scenario at a testsite served from base.
func LocalTargets(base string) Targets {
	base = strings.TrimRight(base, "/")
	return Targets{
		Bing:   base + "/bing/",
		Google: base + "/google/",
		Docs:   base + "/playwright/",
	}
}
