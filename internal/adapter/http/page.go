package http

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.error { color: #a00; }
.charts { display: flex; flex-wrap: wrap; gap: 1rem; }
figure { margin: 0; }
figcaption { font-size: 0.8rem; color: #555; }
.table { max-height: 24rem; overflow-y: auto; }
table { border-collapse: collapse; font-size: 0.85rem; }
th, td { border: 1px solid #ddd; padding: 0.2rem 0.5rem; text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Failed}}
<p class="error">{{.Error}}</p>
{{else}}
<p class="status">{{.Status}}</p>
<form method="get" action="/">
<input type="hidden" name="sid" value="{{.SessionID}}">
<label for="window">{{.SelectorLabel}}</label>
<select id="window" name="window" onchange="this.form.submit()">
<option value=""{{if not .Selected}} selected{{end}}>{{.Placeholder}}</option>
{{- range .Options}}
<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<noscript><button type="submit">Show</button></noscript>
</form>
{{if .Selected}}
<h2>{{.Header}}</h2>
<div class="charts">
<figure>{{.MapSVG}}<figcaption>{{.MapCaption}}</figcaption></figure>
<figure>{{.DepthSVG}}<figcaption>{{.DepthCaption}}</figcaption></figure>
</div>
<div class="table">
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</div>
{{end}}
{{end}}
</body>
</html>
`))
