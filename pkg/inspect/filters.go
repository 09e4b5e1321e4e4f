// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package inspect implements debug pages for the router.
package inspect

import (
	"html/template"
	"net/http"
	"sort"

	"github.com/TheThingsIndustries/topictree/pkg/router"
)

var tmpl = template.Must(template.New("inspect").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<meta http-equiv="X-UA-Compatible" content="ie=edge">
	<title>Topictree - Inspect Filters</title>
	<style>
	body {
		font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, 'Open Sans', 'Helvetica Neue', sans-serif;
		color: #222;
		font-size: 12pt;
	}
	h1, h2, h3 {
		vertical-align: middle;
		text-transform: uppercase;
		margin-top: 0.2em;
	}
	code {
		font-family: Consolas, Monaco, "Andale Mono", "Ubuntu Mono", monospace;
		text-transform: none;
	}
	section.filter {
		border: 1px solid #CCC;
		border-radius: 3px;
		background-color: #FAFAFA;
		padding: 5px;
		margin-bottom: 5px;
	}
	</style>
</head>
<body>
<h1>Filters <small>{{ len .Filters }}</small></h1>
{{ range .Filters }}
<section class="filter">
<h2><code>{{ .Filter }}</code> <small>{{ .Subscribers }} subscriber(s)</small></h2>
</section>
{{ end }}
</body>
</html>
`))

type filterData struct {
	Filter      string
	Subscribers int
}

type data struct {
	Filters []filterData
}

// Filters inspector
func Filters(r *router.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		filters := r.Filters()
		names := make([]string, 0, len(filters))
		for name := range filters {
			names = append(names, name)
		}
		sort.Strings(names)
		var d data
		for _, name := range names {
			d.Filters = append(d.Filters, filterData{Filter: name, Subscribers: filters[name]})
		}
		tmpl.Execute(w, d)
	})
}
