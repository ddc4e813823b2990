package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText_KeepsWhatTheUserTyped(t *testing.T) {
	cases := map[string]string{
		"if a<b then ok":           "if a<b then ok",
		"my dog is <Rex> the best": "my dog is <Rex> the best",
		"<Rex>":                    "<Rex>",
		"a < b & c":                "a < b & c",
		"  <b>hola</b> Milo ":      "<b>hola</b> Milo",
	}
	for in, want := range cases {
		assert.Equal(t, want, PlainText(in), "input %q", in)
	}
}

func TestPlainText_Normalizes(t *testing.T) {
	assert.Equal(t, "hola\nchau", PlainText("hola\r\nchau"))
	assert.Equal(t, "a\nb", PlainText("a\rb"))
	assert.Equal(t, "ab\tc", PlainText("a\x00b\tc\x07"))
	assert.Equal(t, "", PlainText(" \n\t "))
}

func TestMarkdownHTML(t *testing.T) {
	out := MarkdownHTML("**Milo** es muy *juguetón*\n\n<script>x()</script>")
	assert.Contains(t, out, "<strong>Milo</strong>")
	assert.Contains(t, out, "<em>juguetón</em>")
	assert.False(t, strings.Contains(out, "<script>"))
	assert.Contains(t, out, "&lt;script&gt;")

	link := MarkdownHTML("[refugio](https://example.org)")
	assert.Contains(t, link, `rel="nofollow`)

	assert.Equal(t, "", MarkdownHTML("   "))
}

func TestMarkdownHTML_AngleBracketsAreText(t *testing.T) {
	assert.Contains(t, MarkdownHTML("my dog is <Rex> the best"), "my dog is &lt;Rex&gt; the best")
	assert.Contains(t, MarkdownHTML("if a<b then ok"), "if a&lt;b then ok")
}
