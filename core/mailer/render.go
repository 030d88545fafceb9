package mailer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"
)

type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
	FromName string
}

type Renderer struct {
	fromName  string
	templates map[Kind]*template.Template
}

var funcs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("Mon 02 Jan 2006 15:04 MST")
	},
}

func NewRenderer(fromName string) (*Renderer, error) {
	r := &Renderer{
		fromName:  fromName,
		templates: make(map[Kind]*template.Template, len(definitions)),
	}

	for kind, def := range definitions {
		t, err := template.New(string(kind)).Funcs(funcs).Parse(layout)
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(def.body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

// Render builds the subject and both bodies for kind. It has no side effects.
func (r *Renderer) Render(kind Kind, data Data) (Message, error) {
	def, ok := definitions[kind]
	if !ok {
		return Message{}, fmt.Errorf("mailer: unknown kind %q", kind)
	}

	var buf bytes.Buffer
	err := r.templates[kind].ExecuteTemplate(&buf, "layout", struct {
		Data
		Title    string
		FromName string
	}{data, titleFor(kind, data), r.fromName})
	if err != nil {
		return Message{}, fmt.Errorf("mailer: render %s: %w", kind, err)
	}

	htmlBody := buf.String()
	return Message{
		Subject:  def.subject(data),
		HTMLBody: htmlBody,
		TextBody: HTMLToText(htmlBody),
		FromName: r.fromName,
	}, nil
}

var (
	textReplacer = strings.NewReplacer(
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
		"<p>", "\n",
		"</p>", "\n",
		"<li>", "- ",
		"</li>", "\n",
		"<h1>", "\n",
		"<h2>", "\n",
		"<h3>", "\n",
		"</h1>", "\n",
		"</h2>", "\n",
		"</h3>", "\n",
		"</tr>", "\n",
		"<td>", " ",
	)
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText derives the plain-text alternative from a rendered HTML body
// using a fixed substitution table followed by tag stripping.
func HTMLToText(s string) string {
	s = textReplacer.Replace(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	s = strings.Join(lines, "\n")

	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
