package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdCodeBlockRe  = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	mdInlineCodeRe = regexp.MustCompile(`<code>([^<]+)</code>`)
	mdHeadingRe    = regexp.MustCompile(`<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	mdStrongRe     = regexp.MustCompile(`<strong>(.*?)</strong>`)
	mdEmRe         = regexp.MustCompile(`<em>(.*?)</em>`)
	mdLinkRe       = regexp.MustCompile(`<a href="([^"]*)">(.*?)</a>`)
	mdListItemRe   = regexp.MustCompile(`<li>(.*?)</li>`)
	mdTagRe        = regexp.MustCompile(`<[^>]+>`)
	mdBlankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer turns assistant markdown into styled terminal text. It is
// a pure string-to-string collaborator; conversation state never flows
// through it.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
			goldmark.WithExtensions(extension.GFM),
		),
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("dracula"),
	}
}

// Render converts markdown to terminal output wrapped at width. On parse
// failure the raw content comes back unchanged.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.restyle(buf.String(), width)
}

func (r *MarkdownRenderer) restyle(htmlContent string, width int) string {
	out := htmlContent

	// Code blocks are pulled out first so later tag stripping can't touch
	// their highlighted contents.
	var fenced []string
	out = mdCodeBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdCodeBlockRe.FindStringSubmatch(m)
		code := decodeEntities(parts[2])
		boxWidth := width - 4
		if boxWidth < 20 {
			boxWidth = 20
		}
		styled := lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			Width(boxWidth).
			Render(r.highlight(code, parts[1]))
		fenced = append(fenced, styled)
		return fmt.Sprintf("\n{{FENCE_%d}}\n", len(fenced)-1)
	})

	out = mdInlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdInlineCodeRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Reverse(true).Render(" " + decodeEntities(parts[1]) + " ")
	})

	out = mdHeadingRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdHeadingRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Bold(true).Underline(parts[1] == "1").Render(parts[2]) + "\n"
	})

	out = mdStrongRe.ReplaceAllStringFunc(out, func(m string) string {
		return lipgloss.NewStyle().Bold(true).Render(mdStrongRe.FindStringSubmatch(m)[1])
	})
	out = mdEmRe.ReplaceAllStringFunc(out, func(m string) string {
		return lipgloss.NewStyle().Italic(true).Render(mdEmRe.FindStringSubmatch(m)[1])
	})
	out = mdLinkRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdLinkRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Underline(true).Render(fmt.Sprintf("%s (%s)", parts[2], parts[1]))
	})
	out = mdListItemRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdListItemRe.FindStringSubmatch(m)
		return "  • " + mdTagRe.ReplaceAllString(parts[1], "") + "\n"
	})

	out = strings.NewReplacer("<p>", "", "</p>", "\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(out)

	for i, block := range fenced {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{FENCE_%d}}", i), block)
	}

	out = mdTagRe.ReplaceAllString(out, "")
	out = decodeEntities(out)
	out = mdBlankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x60;", "`",
	"&nbsp;", " ",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
