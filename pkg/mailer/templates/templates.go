package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each needs <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	Welcome = "welcome"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// WelcomeData is the payload of the welcome template.
type WelcomeData struct {
	Name    string
	AppName string
}

// Map flattens d into the map carried by an email job.
func (d WelcomeData) Map() map[string]any {
	return map[string]any{"Name": d.Name, "AppName": d.AppName}
}

var funcs = map[string]any{
	"year":    func() int { return time.Now().UTC().Year() },
	"upper":   strings.ToUpper,
	"default": defaultFn,
}

// Parsed once; both sets are safe for concurrent execution.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(texttpl.FuncMap(funcs)).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmpl.FuncMap(funcs)).ParseFS(FS, "*.html.tmpl"))
)

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		if reflect.ValueOf(value).IsZero() {
			return fallback
		}
		return value
	}
}

// Render produces subject, plain text and HTML bodies for the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	exec := func(file string, run func() error) (string, error) {
		buf.Reset()
		if err := run(); err != nil {
			return "", fmt.Errorf("exec %q: %w", file, err)
		}
		return buf.String(), nil
	}
	textFile := func(file string) (string, error) {
		return exec(file, func() error { return textSet.ExecuteTemplate(&buf, file, data) })
	}

	if subject, err = textFile(name + ".subject.tmpl"); err != nil {
		return "", "", "", err
	}
	if text, err = textFile(name + ".text.tmpl"); err != nil {
		return "", "", "", err
	}
	file := name + ".html.tmpl"
	if html, err = exec(file, func() error { return htmlSet.ExecuteTemplate(&buf, file, data) }); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
