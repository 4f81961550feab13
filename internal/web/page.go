package web

import (
	"html/template"

	"github.com/jcaMx/company-extractor-web/internal/render"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"sectionHeading": render.SectionHeading,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Company Extractor</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.form { display: flex; gap: .5rem; align-items: center; }
.error { color: #b00020; margin-top: 1rem; }
.section { border-top: 1px solid #ddd; padding: .5rem 0; }
</style>
</head>
<body>
<div class="app">
<h1 class="app-title">Company Extractor</h1>
<form method="post" action="/" class="form">
<label for="url">Enter Company URL:</label>
<input type="text" id="url" name="url" value="{{.URL}}" required placeholder="https://example.com">
{{if .Loading}}<button type="submit" disabled>Extracting...</button>{{else}}<button type="submit">Extract</button>{{end}}
</form>
{{if .HasError}}<div class="error">{{.ErrorText}}</div>{{end}}
{{with .Result}}
<div class="results">
<h2>Results for: {{.Company}}</h2>
{{range .Summaries.Entries}}
<div class="section">
<h3>{{sectionHeading .Name}}</h3>
<p>{{.Section.Summary}}</p>
<a href="{{.Section.URL}}" target="_blank" rel="noopener noreferrer">View original page</a>
</div>
{{end}}
</div>
{{end}}
</div>
</body>
</html>
`))
