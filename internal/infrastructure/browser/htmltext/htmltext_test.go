package htmltext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const page = `<!doctype html>
<html>
<head><title>  Playwright
  docs </title><style>.x{}</style></head>
<body>
    <h1>Getting started</h1>
    <!-- comment -->
    <script>var hidden = "script text"</script>
    <p hidden>hidden attr</p>
    <p style="display: none">display none</p>
    <div aria-hidden="true">aria hidden</div>
    <input type="hidden" value="nope">
    <p>Install   the
       browsers</p>
</body>
</html>`

func TestTitle(t *testing.T) {
	if got := Title(page); got != "Playwright docs" {
		t.Errorf("Title() = %q, want %q", got, "Playwright docs")
	}
	if got := Title("<p>no title</p>"); got != "" {
		t.Errorf("Title() without <title> = %q, want empty", got)
	}
}

func TestVisibleText_SkipsHiddenAndScripts(t *testing.T) {
	got := VisibleText(page)

	if got != "Getting started Install the browsers" {
		t.Errorf("VisibleText() = %q", got)
	}
	for _, leaked := range []string{"script text", "hidden attr", "display none", "aria hidden", "comment", ".x{}"} {
		if strings.Contains(got, leaked) {
			t.Errorf("VisibleText() leaked %q", leaked)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := Preview(page, 1000); got != "Getting started Install the browsers" {
		t.Errorf("Preview() uncut = %q", got)
	}
	if got := Preview(page, 7); got != "Getting..." {
		t.Errorf("Preview() cut = %q", got)
	}

	got := Preview("<p>ñññ</p>", 3)
	if !utf8.ValidString(got) {
		t.Errorf("Preview() split a rune: %q", got)
	}
	if got != "ñ..." {
		t.Errorf("Preview() = %q, want %q", got, "ñ...")
	}
}

func TestHidden(t *testing.T) {
	tests := []struct {
		fragment string
		want     bool
	}{
		{`<div hidden></div>`, true},
		{`<div aria-hidden="true"></div>`, true},
		{`<div aria-hidden="false"></div>`, false},
		{`<input type="HIDDEN">`, true},
		{`<input type="text">`, false},
		{`<div style="visibility: hidden"></div>`, true},
		{`<div style="color: red"></div>`, false},
	}
	for _, tt := range tests {
		doc, err := html.Parse(strings.NewReader("<body>" + tt.fragment + "</body>"))
		if err != nil {
			t.Fatal(err)
		}
		body := doc.FirstChild.LastChild
		if got := Hidden(body.FirstChild); got != tt.want {
			t.Errorf("Hidden(%s) = %v, want %v", tt.fragment, got, tt.want)
		}
	}
}
