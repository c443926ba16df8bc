package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/indexnow/pkg/indexnow"
)

// Summary describes one submit run.
type Summary struct {
	ID         string        `json:"id"`
	Endpoint   string        `json:"endpoint"`
	Host       string        `json:"host"`
	URLCount   int           `json:"url_count"`
	Dropped    int           `json:"dropped"`
	DryRun     bool          `json:"dry_run"`
	Success    bool          `json:"success"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
}

// SetResult fills the outcome fields from a Notify error.
func (s *Summary) SetResult(err error) {
	if err == nil {
		s.Success = true
		return
	}
	s.Success = false
	s.Error = err.Error()

	var e *indexnow.Error
	if errors.As(err, &e) {
		s.ErrorKind = e.Kind.String()
		s.StatusCode = e.StatusCode
	}
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

const textTmpl = `IndexNow Submission {{.ID}}
------------------
Endpoint:  {{.Endpoint}}
Host:      {{.Host}}
URLs:      {{.URLCount}}{{if .Dropped}} ({{.Dropped}} dropped: other host){{end}}
Started:   {{.StartTime.Format "2006-01-02 15:04:05"}}
Duration:  {{.Duration}}
{{- if .DryRun}}
Result:    dry run, nothing sent
{{- else if .Success}}
Result:    accepted
{{- else}}
Result:    failed ({{.ErrorKind}}{{if .StatusCode}} {{.StatusCode}}{{end}})
Error:     {{.Error}}
{{- end}}
`

var textTemplate = template.Must(template.New("textReport").Parse(textTmpl))

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	if err := textTemplate.Execute(w, summary); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

// Write dispatches on format: "json" or "text".
func Write(w io.Writer, format string, summary Summary) error {
	switch format {
	case "json":
		return WriteJSON(w, summary)
	case "text", "":
		return WriteText(w, summary)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
