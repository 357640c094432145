package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/awsmap/awsmap/inventory"
)

type htmlData struct {
	Meta     inventory.Metadata
	Services []serviceSection
	Errors   []inventory.UnitError
}

type serviceSection struct {
	Name    string
	Records []inventory.Record
}

func renderHTML(result *inventory.ScanResult) ([]byte, error) {
	data := htmlData{
		Meta:     result.Metadata,
		Services: groupByService(result.Records),
		Errors:   result.Errors,
	}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

// groupByService splits the ordered record list into per-service sections.
// Records are already sorted by service, so the sections come out sorted too.
func groupByService(records []inventory.Record) []serviceSection {
	grouped := make(map[string][]inventory.Record)
	for _, record := range records {
		grouped[record.Service] = append(grouped[record.Service], record)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]serviceSection, 0, len(names))
	for _, name := range names {
		sections = append(sections, serviceSection{Name: name, Records: grouped[name]})
	}
	return sections
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"tags": flattenTags,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AWS Inventory — {{.Meta.AccountID}}</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', sans-serif; margin: 2rem; color: #1a202c; }
  h1 { font-size: 1.4rem; }
  .summary { display: flex; gap: 1rem; margin: 1rem 0; flex-wrap: wrap; }
  .card { border: 1px solid #e2e8f0; border-radius: 8px; padding: .8rem 1.2rem; background: #f7fafc; }
  .card .num { font-size: 1.5rem; font-weight: 600; }
  .card .label { font-size: .75rem; color: #718096; text-transform: uppercase; }
  h2 { font-size: 1.05rem; margin-top: 2rem; border-bottom: 2px solid #e2e8f0; padding-bottom: .3rem; }
  table { border-collapse: collapse; width: 100%; font-size: .85rem; }
  th, td { text-align: left; padding: .35rem .6rem; border-bottom: 1px solid #edf2f7; }
  th { background: #edf2f7; }
  .errors { background: #fff5f5; border: 1px solid #feb2b2; border-radius: 8px; padding: 1rem; margin-top: 2rem; }
</style>
</head>
<body>
<h1>AWS Inventory — account {{.Meta.AccountID}}{{with .Meta.AccountAlias}} ({{.}}){{end}}</h1>
<p>Scanned {{.Meta.Timestamp.Format "2006-01-02 15:04:05 MST"}} in {{.Meta.Duration}}.</p>

<div class="summary">
  <div class="card"><div class="num">{{.Meta.ResourceCount}}</div><div class="label">Resources</div></div>
  <div class="card"><div class="num">{{.Meta.ServicesScanned}}</div><div class="label">Services</div></div>
  <div class="card"><div class="num">{{.Meta.RegionsScanned}}</div><div class="label">Regions</div></div>
  <div class="card"><div class="num">{{len .Errors}}</div><div class="label">Failed units</div></div>
</div>

{{range .Services}}
<h2>{{.Name}} ({{len .Records}})</h2>
<table>
  <tr><th>Type</th><th>ID</th><th>Name</th><th>Region</th><th>Tags</th></tr>
  {{range .Records}}
  <tr><td>{{.Type}}</td><td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Region}}</td><td>{{tags .Tags}}</td></tr>
  {{end}}
</table>
{{end}}

{{if .Errors}}
<div class="errors">
<h2>Failed units</h2>
<table>
  <tr><th>Service</th><th>Region</th><th>Error</th></tr>
  {{range .Errors}}
  <tr><td>{{.Service}}</td><td>{{.Region}}</td><td>{{.Message}}</td></tr>
  {{end}}
</table>
</div>
{{end}}
</body>
</html>
`))
