// Package selector translates role, label, placeholder and text queries into
// plain CSS plus a text filter, for drivers without a native query engine
// for them.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

// Query is a CSS selector optionally narrowed by an accessible-name or text
// match. Name matching is case-insensitive substring matching.
type Query struct {
	CSS  string
	Name string
}

// TextXPath selects the innermost elements whose normalized text contains
// text: an element matches only if none of its element children does.
func TextXPath(text string) string {
	lit := xpathLiteral(text)
	return fmt.Sprintf(`//body//*[contains(normalize-space(.), %s) and not(*[contains(normalize-space(.), %s)])]`, lit, lit)
}

// LabelXPath selects form controls labelled text, through aria-label,
// <label for=id>, or a wrapping <label>.
func LabelXPath(text string) string {
	lit := xpathLiteral(text)
	return fmt.Sprintf(`//*[@aria-label=%[1]s] | //*[@id=//label[normalize-space(.)=%[1]s]/@for] | //label[normalize-space(.)=%[1]s]//*[self::input or self::textarea or self::select]`, lit)
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

var roleCSS = map[entity.Role]string{
	entity.RoleButton:   `button, [role="button"], input[type="submit"], input[type="button"], input[type="reset"]`,
	entity.RoleLink:     `a[href], [role="link"]`,
	entity.RoleTextbox:  `input:not([type]), input[type="text"], input[type="email"], input[type="password"], input[type="tel"], input[type="url"], textarea, [role="textbox"]`,
	entity.RoleSearch:   `input[type="search"], [role="searchbox"]`,
	entity.RoleHeading:  `h1, h2, h3, h4, h5, h6, [role="heading"]`,
	entity.RoleCheckbox: `input[type="checkbox"], [role="checkbox"]`,
}

func Role(role entity.Role, name string) Query {
	css, ok := roleCSS[role]
	if !ok {
		css = `[role=` + strconv.Quote(string(role)) + `]`
	}
	return Query{CSS: css, Name: name}
}

func Placeholder(text string) Query {
	return Query{CSS: `[placeholder=` + strconv.Quote(text) + `]`}
}

// Label matches by aria-label only; <label for> association is resolved by
// drivers that can walk the document.
func Label(text string) Query {
	return Query{CSS: `[aria-label=` + strconv.Quote(text) + `]`}
}

// NameMatches reports whether the element's visible text, aria-label,
// value or title contains want.
func NameMatches(want string, candidates ...string) bool {
	if want == "" {
		return true
	}
	want = strings.ToLower(strings.TrimSpace(want))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), want) {
			return true
		}
	}
	return false
}
