package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// highlightPattern matches ==text== highlight spans.
var highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)

var (
	renderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	converterOnce sync.Once
	converter     *md.Converter
)

func htmlConverter() *md.Converter {
	converterOnce.Do(func() {
		converter = md.NewConverter("", true, &md.Options{
			HeadingStyle:     "atx",
			BulletListMarker: "-",
			CodeBlockStyle:   "fenced",
		})
		converter.Use(plugin.GitHubFlavored())
		converter.AddRules(md.Rule{
			Filter: []string{"mark"},
			Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
				if strings.TrimSpace(content) == "" {
					return md.String(content)
				}
				return md.String("==" + content + "==")
			},
		})
	})
	return converter
}

// ToMarkdown converts editor html to markdown. <mark> spans become ==text==.
func ToMarkdown(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	out, err := htmlConverter().ConvertString(input)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(out, `\==`, "=="), nil
}

// ToHTML renders markdown to html. ==text== spans become <mark> elements.
func ToHTML(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	source := highlightPattern.ReplaceAllString(input, "<mark>$1</mark>")
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
