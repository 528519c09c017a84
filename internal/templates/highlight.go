package templates

import (
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightStyle = "monokai"

var jsonFormatter = html.New(
	html.WithClasses(false),
	html.TabWidth(2),
)

// HighlightJSON returns the source as highlighted HTML. If highlighting fails the source is returned escaped.
func HighlightJSON(source string) template.HTML {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return escaped(source)
	}

	var sb strings.Builder
	if err := jsonFormatter.Format(&sb, styles.Get(highlightStyle), iterator); err != nil {
		return escaped(source)
	}
	return template.HTML(sb.String()) // #nosec G203 -- chroma escapes token values
}

func escaped(source string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(source) + "</pre>") // #nosec G203
}
