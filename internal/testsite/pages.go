package testsite

import "html/template"

var templates = template.Must(template.New("base").Parse(`{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
</head>
<body>
{{template "body" .}}
</body>
</html>{{end}}`))

func page(name, body string) *template.Template {
	t := template.Must(templates.Clone())
	return template.Must(t.New(name).Parse(`{{define "body"}}` + body + `{{end}}`))
}

var (
	bingHome = page("bing-home", `
	<header><a href="/bing/">Bing</a></header>
	<form id="sb_form" action="/bing/search" method="get">
		<input id="sb_form_q" name="q" type="search" aria-label="Enter your search term" value="">
		<input type="hidden" name="form" value="QBLH">
		<button type="submit" aria-label="Search the web">Search</button>
	</form>`)

	bingResults = page("bing-results", `
	<form id="sb_form" action="/bing/search" method="get">
		<input id="sb_form_q" name="q" type="search" value="{{.Query}}">
	</form>
	<ol id="b_results">
	{{range .Results}}
		<li class="b_algo">
			<h2><a href="{{.Href}}">{{.Title}}</a></h2>
			<p>{{.Snippet}}</p>
		</li>
	{{end}}
		<li class="b_pag" style="display:none"><a href="/bing/search?q={{.Query}}&first=11">Next</a></li>
	</ol>`)

	googleHome = page("google-home", `
	<form action="/google/search" method="get" role="search">
		<textarea name="q" title="Search" aria-label="Search" rows="1"></textarea>
		<input type="submit" name="btnK" value="Google Search">
	</form>
	<script>
		document.querySelector('textarea[name=q]').addEventListener('keydown', function (e) {
			if (e.key === 'Enter') { e.preventDefault(); this.form.submit(); }
		});
	</script>`)

	googleResults = page("google-results", `
	<form action="/google/search" method="get" role="search">
		<textarea name="q" title="Search" rows="1">{{.Query}}</textarea>
	</form>
	<div id="search">
	{{range .Results}}
		<div class="g"><a href="{{.Href}}"><h3>{{.Title}}</h3></a><span>{{.Snippet}}</span></div>
	{{end}}
	</div>`)

	docsHome = page("docs-home", `
	<nav>
		<a href="/playwright/">Playwright</a>
		<a href="/playwright/docs/intro">Docs</a>
		<button type="button" class="DocSearch" aria-label="Search" onclick="document.getElementById('docsearch-input').focus()">Search</button>
		<input id="docsearch-input" type="search" placeholder="Search docs" autocomplete="off">
	</nav>
	<main>
		<h1>Playwright enables reliable end-to-end testing for modern web apps.</h1>
		<a class="button" href="/playwright/docs/intro">Get started</a>
		<p>Any browser. Any platform. One API.</p>
		<footer><a href="/playwright/docs/intro">Get started with the docs</a></footer>
	</main>`)

	docsIntro = page("docs-intro", `
	<main>
		<h1>Installation</h1>
		<p>Playwright was created specifically to accommodate the needs of end-to-end testing.</p>
	</main>`)

	article = page("article", `
	<article>
		<h1>{{.Title}}</h1>
		<p>{{.Snippet}}</p>
	</article>`)
)
