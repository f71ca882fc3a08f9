package glob

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, url string
		want         bool
	}{
		{"**/search?**", "https://www.bing.com/search?q=playwright", true},
		{"**/search?**", "http://127.0.0.1:8080/bing/search?q=go", true},
		{"**/search?**", "https://www.bing.com/", false},
		{"**/docs/*", "https://playwright.dev/docs/intro", true},
		{"**/docs/*", "https://playwright.dev/docs/api/class-page", false},
		{"**", "about:blank", true},
		{"https://example.com/", "https://example.com/", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.pattern, tt.url), "Match(%q, %q)", tt.pattern, tt.url)
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile("[unterminated")
	assert.ErrorContains(t, err, "compile url pattern")
	assert.False(t, Match("[unterminated", "[unterminated"))
}

func TestCompile_Cached(t *testing.T) {
	_, err := Compile("**/cached/**")
	assert.NoError(t, err)
	_, ok := cache.Load("**/cached/**")
	assert.True(t, ok)
}

func TestMatch_SearchPattern(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := rapid.SampledFrom([]string{"www.bing.com", "example.org", "playwright.dev"}).Draw(t, "host")
		prefix := rapid.StringMatching(`(/[0-9a-f]{1,6}){0,3}`).Draw(t, "prefix")
		q := rapid.String().Draw(t, "q")

		u := "https://" + host + prefix + "/search?q=" + url.QueryEscape(q)
		if !Match("**/search?**", u) {
			t.Fatalf("%q does not match **/search?**", u)
		}
		if Match("**/search?**", "https://"+host+prefix+"/") {
			t.Fatalf("page without /search matched")
		}
	})
}
