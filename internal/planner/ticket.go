package planner

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

const defaultTicketTemplate = `Dispatch ticket {{.ID}}
Created: {{.CreatedAt.Format "2006-01-02 15:04"}}
Units: {{.TotalUnits}}  Makespan: {{.Makespan}}{{if .Profit}}  Profit: {{deref .Profit}}{{end}}

Run in this order:
{{- range $i, $job := .Schedule.Jobs}}
{{inc $i}}. {{$job.Product}}
{{- range $m, $start := $job.Start}}
   {{(index $.Machines $m).Name}}: {{$start}} -> {{index $job.End $m}}
{{- end}}
{{- end}}

Idle time:
{{- range $m, $idle := .Schedule.Idle}}
  {{(index $.Machines $m).Name}}: {{$idle}}
{{- end}}
`

var ticketFuncs = template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"deref": func(p *int) int { return *p },
}

// RenderTicket renders a shop-floor dispatch ticket for the plan.
// If templatePath is non-empty, it loads a custom template from that file.
func RenderTicket(plan *Plan, templatePath string) (string, error) {
	tmplStr := defaultTicketTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("read ticket template: %w", err)
		}
		tmplStr = string(data)
	}

	tmpl, err := template.New("ticket").Funcs(ticketFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parse ticket template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, plan); err != nil {
		return "", err
	}
	return buf.String(), nil
}
