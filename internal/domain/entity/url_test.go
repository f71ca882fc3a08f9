package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.bing.com/",
		"http://127.0.0.1:8080/bing/search?q=go",
		"about:blank",
		"file:///tmp/page.html",
		"  https://playwright.dev  ",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{
		"",
		"   ",
		"/relative/path",
		"www.bing.com",
		"javascript:alert(1)",
		"ftp://example.com/file",
		"http://[::1",
	}
	for _, u := range invalid {
		assert.ErrorIs(t, ValidateURL(u), ErrInvalidURL, u)
	}
}

func TestScenarioResult_Passed(t *testing.T) {
	assert.True(t, (&ScenarioResult{Status: ScenarioPassed}).Passed())
	assert.False(t, (&ScenarioResult{Status: ScenarioFailed}).Passed())
	assert.False(t, (&ScenarioResult{Status: ScenarioBroken}).Passed())
}
