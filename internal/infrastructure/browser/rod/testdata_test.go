package rod

// HTML fixtures served by the adapter tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	SearchHTML = `<!DOCTYPE html>
<html>
<head><title>Search</title></head>
<body>
	<form action="/search" method="get">
		<label for="q">Query</label>
		<input id="q" type="text" name="q" placeholder="Search docs" />
		<button type="submit">Search</button>
	</form>
</body>
</html>`

	ResultsHTML = `<!DOCTYPE html>
<html>
<head><title>Results</title></head>
<body>
	<ol id="results">
		<li class="hit"><h2><a href="/a">Alpha result</a></h2></li>
		<li class="hit"><h2><a href="/b">Beta result</a></h2></li>
		<li class="hit" style="display:none"><h2><a href="/c">Hidden result</a></h2></li>
	</ol>
</body>
</html>`

	DelayedHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="root"></div>
	<script>
		setTimeout(function() {
			var el = document.createElement('p');
			el.id = 'late';
			el.textContent = 'Arrived';
			document.getElementById('root').appendChild(el);
		}, 300);
	</script>
</body>
</html>`
)
