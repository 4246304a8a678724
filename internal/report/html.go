package report

import (
	_ "embed"
	"encoding/csv"
	"html"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	goerrors "gitlab.com/tozd/go/errors"

	"offload/internal/domain"
)

//go:embed template.html
var htmlTemplate string

var statusClass = map[domain.Status]string{
	domain.StatusSuccessful: "text-success",
	domain.StatusSkipped:    "text-info",
	domain.StatusFailed:     "text-failed",
}

// RenderHTML writes <stem>.html next to the CSV and returns its path.
func (r *Report) RenderHTML() (string, error) {
	f, err := r.fs.Open(r.path)
	if err != nil {
		return "", goerrors.Errorf("open report %s: %w", r.path, err)
	}
	records, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		return "", goerrors.Errorf("parse report %s: %w", r.path, err)
	}

	page := Render(records, r.started.Format("2006-01-02 15:04"))
	target := strings.TrimSuffix(r.path, filepath.Ext(r.path)) + ".html"
	if err := afero.WriteFile(r.fs, target, []byte(page), 0o644); err != nil {
		return "", goerrors.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// Render fills the page template with a header row and one table row per
// record. Status cells get a class per outcome.
func Render(records [][]string, date string) string {
	var columns, rows strings.Builder
	statusCol := -1
	if len(records) > 0 {
		for i, name := range records[0] {
			if name == "Status" {
				statusCol = i
			}
			columns.WriteString("<th>" + html.EscapeString(name) + "</th>")
		}
		records = records[1:]
	}

	for _, record := range records {
		rows.WriteString("<tr>")
		for i, cell := range record {
			value := html.EscapeString(cell)
			if i == statusCol {
				if class, ok := statusClass[domain.Status(cell)]; ok {
					value = `<span class="` + class + `">` + value + "</span>"
				}
			}
			rows.WriteString("<td>" + value + "</td>")
		}
		rows.WriteString("</tr>\n")
	}

	return strings.NewReplacer(
		"{date}", html.EscapeString(date),
		"{table_columns}", columns.String(),
		"{table_rows}", rows.String(),
	).Replace(htmlTemplate)
}
