// Package report: HTML output.
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

// HTMLGenerator renders a Report as a self-contained HTML page.
type HTMLGenerator struct {
	template *template.Template
}

var htmlFuncs = template.FuncMap{
	"confidenceClass": func(c Confidence) string {
		switch c {
		case ConfidenceHigh:
			return "high"
		case ConfidenceMedium:
			return "medium"
		default:
			return "low"
		}
	},
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
	"formatDuration": func(d time.Duration) string {
		return d.String()
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
}

// NewHTMLGenerator builds a generator with the default template.
func NewHTMLGenerator() *HTMLGenerator {
	return &HTMLGenerator{
		template: template.Must(template.New("report").Funcs(htmlFuncs).Parse(htmlTemplate)),
	}
}

// Generate writes report to w as HTML.
func (g *HTMLGenerator) Generate(report *Report, w io.Writer) error {
	return g.template.Execute(w, report)
}

// Extension returns the file extension.
func (g *HTMLGenerator) Extension() string {
	return "html"
}

// SetTemplate overrides the generator's template.
func (g *HTMLGenerator) SetTemplate(tmpl *template.Template) {
	g.template = tmpl
}

// GetDefaultTemplate returns the default HTML template string.
func GetDefaultTemplate() string {
	return htmlTemplate
}

// CustomHTMLGenerator builds a generator from a caller-supplied template.
func CustomHTMLGenerator(templateStr string) (*HTMLGenerator, error) {
	tmpl, err := template.New("report").Funcs(htmlFuncs).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &HTMLGenerator{template: tmpl}, nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-dark: #0D0D0D;
            --bg-panel: #1A1A2E;
            --bg-header: #16213E;
            --text-primary: #E0E0E0;
            --text-dim: #666666;
            --cyan: #00FFFF;
            --magenta: #FF00FF;
            --green: #00FF00;
            --yellow: #FFFF00;
            --red: #FF0055;
        }
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', 'Roboto', 'Helvetica Neue', sans-serif;
            background: var(--bg-dark);
            color: var(--text-primary);
            line-height: 1.6;
            min-height: 100vh;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header {
            background: var(--bg-header);
            padding: 30px;
            border-radius: 10px;
            margin-bottom: 30px;
            border: 1px solid var(--cyan);
        }
        h1 { color: var(--cyan); font-size: 2.5em; margin-bottom: 10px; }
        .meta { color: var(--text-dim); font-size: 0.9em; }
        .meta span { margin-right: 20px; }
        .section {
            background: var(--bg-panel);
            border-radius: 10px;
            padding: 20px;
            margin-bottom: 20px;
            border: 1px solid var(--magenta);
        }
        h2 { color: var(--magenta); margin-bottom: 20px; font-size: 1.5em; }
        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
        }
        .stat-card {
            background: var(--bg-header);
            padding: 20px;
            border-radius: 8px;
            text-align: center;
            border: 1px solid var(--cyan);
        }
        .stat-value { font-size: 2em; font-weight: bold; color: var(--cyan); }
        .stat-label { color: var(--text-dim); font-size: 0.9em; margin-top: 5px; }
        .confidence-badges { display: flex; gap: 10px; flex-wrap: wrap; margin-bottom: 20px; }
        .badge { padding: 5px 15px; border-radius: 20px; font-weight: bold; font-size: 0.9em; }
        .badge.high { background: var(--red); color: white; }
        .badge.medium { background: var(--yellow); color: black; }
        .badge.low { background: var(--green); color: black; }
        .finding-list { list-style: none; }
        .finding-item {
            background: var(--bg-header);
            padding: 15px;
            margin-bottom: 15px;
            border-radius: 8px;
            border-left: 4px solid var(--cyan);
        }
        .finding-item.high { border-left-color: var(--red); }
        .finding-item.medium { border-left-color: var(--yellow); }
        .finding-item.low { border-left-color: var(--green); }
        .finding-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 10px; }
        .finding-title { font-weight: bold; color: var(--text-primary); }
        .finding-meta { color: var(--text-dim); font-size: 0.8em; }
        .finding-details code {
            background: var(--bg-dark);
            padding: 2px 6px;
            border-radius: 4px;
            font-family: 'Fira Code', 'Consolas', monospace;
            color: var(--cyan);
        }
        .no-findings { text-align: center; padding: 40px; color: var(--green); font-size: 1.2em; }
        footer { text-align: center; color: var(--text-dim); padding: 20px; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>{{.Title}}</h1>
            <div class="meta">
                <span>Corpus: <strong>{{.CorpusSource}}</strong></span>
                <span>Generated: {{formatTime .GeneratedAt}}</span>
                <span>Version: {{.Version}}</span>
            </div>
        </header>

        <section class="section">
            <h2>Statistics</h2>
            <div class="stats-grid">
                <div class="stat-card">
                    <div class="stat-value">{{.Statistics.TotalItems}}</div>
                    <div class="stat-label">Total Items</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.Statistics.DuplicateGroups}}</div>
                    <div class="stat-label">Duplicate Groups</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.Statistics.ItemsInDuplicateGroups}}</div>
                    <div class="stat-label">Items In Groups</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.Statistics.LargestGroupSize}}</div>
                    <div class="stat-label">Largest Group</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{formatDuration .Statistics.BuildDuration}}</div>
                    <div class="stat-label">Build Duration</div>
                </div>
                <div class="stat-card">
                    <div class="stat-value">{{.Statistics.QueryCount}}</div>
                    <div class="stat-label">Queries Run</div>
                </div>
            </div>
        </section>

        <section class="section">
            <h2>Findings ({{len .Findings}})</h2>

            {{if .Findings}}
            <div class="confidence-badges">
                {{range $conf, $count := .ConfidenceCounts}}
                {{if gt $count 0}}
                <span class="badge {{confidenceClass $conf}}">{{$conf}}: {{$count}}</span>
                {{end}}
                {{end}}
            </div>

            <ul class="finding-list">
                {{range .Findings}}
                <li class="finding-item {{confidenceClass .Confidence}}">
                    <div class="finding-header">
                        <span class="finding-title">{{.ID}}</span>
                        <span class="badge {{confidenceClass .Confidence}}">{{.Confidence}}</span>
                    </div>
                    <div class="finding-details">
                        <p><strong>Algorithm:</strong> <code>{{.Algorithm}}</code></p>
                        <p><strong>Members:</strong> {{range .Members}}<code>{{.}}</code> {{end}}</p>
                        <p><strong>Estimated similarity:</strong> {{pct .EstimatedSimilarity}}</p>
                    </div>
                    <div class="finding-meta">{{formatTime .Timestamp}}</div>
                </li>
                {{end}}
            </ul>
            {{else}}
            <div class="no-findings">No near-duplicate groups found.</div>
            {{end}}
        </section>

        <footer>{{.Description}}</footer>
    </div>
</body>
</html>`
