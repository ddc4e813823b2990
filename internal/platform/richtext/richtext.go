// Package richtext normaliza texto de usuario y renderiza markdown seguro.
package richtext

import (
	"bytes"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	ugc = newUGCPolicy()
	md  = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// PlainText no interpreta HTML: el texto se guarda como lo escribió el
// usuario (sin caracteres de control, saltos \n, trimmed) y se escapa al
// mostrarlo. "if a<b" o "<Rex>" quedan intactos.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// MarkdownHTML renderiza markdown a HTML saneado (UGC).
// Los '<' se escapan antes de parsear: un "<Rex>" es texto, no un tag.
// Si goldmark falla, devuelve el texto escapado.
func MarkdownHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(strings.ReplaceAll(s, "<", "&lt;")), &buf); err != nil {
		return html.EscapeString(s)
	}
	return strings.TrimSpace(ugc.Sanitize(buf.String()))
}
