package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/scipunch/freegames/promo"
	"github.com/scipunch/freegames/report"
)

//go:embed templates/*.tmpl
var templates embed.FS

var ErrInvalidInput = errors.New("invalid report input")

// ExitPolicy decides the process status after a malformed input was rendered
// into the fallback message.
type ExitPolicy string

const (
	// Strict exits 1 and leaves a diagnostic on stderr
	Strict ExitPolicy = "strict"
	// Lenient exits 0; the fallback message is the only signal
	Lenient ExitPolicy = "lenient"
)

func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch p := ExitPolicy(strings.ToLower(s)); p {
	case Strict, Lenient:
		return p, nil
	case "":
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown exit policy: %s", s)
	}
}

// Renderer turns a report into a chat message
type Renderer struct {
	tmpl   *template.Template
	labels Labels
	policy ExitPolicy
}

type view struct {
	Labels    Labels
	Current   []promo.Promotion
	Upcoming  []promo.Promotion
	Timestamp string
	Link      string
}

func New(locale string, policy ExitPolicy) (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/message.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse message template: %w", err)
	}
	return &Renderer{
		tmpl:   tmpl,
		labels: LabelsFor(locale),
		policy: policy,
	}, nil
}

// Render formats a well-formed report
func (r *Renderer) Render(rep report.Report) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, view{
		Labels:    r.labels,
		Current:   rep.CurrentFreeGames,
		Upcoming:  rep.UpcomingFreeGames,
		Timestamp: rep.Timestamp,
		Link:      r.labels.StoreURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute message template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// RenderInput decodes a JSON report and renders it. Malformed input and
// fetch-failure documents produce the fallback message along with an error
// wrapping ErrInvalidInput.
func (r *Renderer) RenderInput(data []byte) (string, error) {
	rep, err := decode(data)
	if err != nil {
		return r.Fallback(), err
	}
	return r.Render(rep)
}

// Fallback is the fixed message used when the input cannot be rendered
func (r *Renderer) Fallback() string {
	return r.labels.InvalidInput + "\n" + r.labels.Link + ": " + r.labels.StoreURL
}

// ExitCode maps a RenderInput error to a process status according to the policy
func (r *Renderer) ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrInvalidInput) && r.policy == Lenient {
		return 0
	}
	return 1
}

func decode(data []byte) (report.Report, error) {
	var rep report.Report

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return rep, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}

	var doc struct {
		report.Report
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return rep, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if doc.Error != nil {
		return rep, fmt.Errorf("%w: fetch stage failed: %s", ErrInvalidInput, *doc.Error)
	}
	return doc.Report, nil
}
