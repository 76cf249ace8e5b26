package advisor

import (
	"html"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	boldSpan     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	numberedItem = regexp.MustCompile(`^(\s*)(\d+\.)(\s+)`)
	headingLine  = regexp.MustCompile(`^\s*(?:\d+\.\s+)?\*\*(.+?)\*\*\s*(.*)$`)
)

// Style decides how emphasized spans are rendered.
type Style struct {
	Bold    func(string) string
	Number  func(string) string
	Escape  func(string) string
	Newline string
}

// TerminalStyle renders bold spans and item numbers with ANSI attributes.
// fatih/color drops them automatically when stdout is not a terminal.
func TerminalStyle() Style {
	bold := color.New(color.Bold)
	number := color.New(color.FgCyan, color.Bold)
	return Style{
		Bold:    func(s string) string { return bold.Sprint(s) },
		Number:  func(s string) string { return number.Sprint(s) },
		Escape:  func(s string) string { return s },
		Newline: "\n",
	}
}

// HTMLStyle renders bold spans as <strong> and numbered items as paragraphs.
func HTMLStyle() Style {
	return Style{
		Bold:    func(s string) string { return "<strong>" + s + "</strong>" },
		Number:  func(s string) string { return "<b>" + s + "</b>" },
		Escape:  html.EscapeString,
		Newline: "<br />\n",
	}
}

// Highlight applies style to **bold** spans and numbered item prefixes.
func Highlight(text string, style Style) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = style.Escape(line)
		line = boldSpan.ReplaceAllStringFunc(line, func(match string) string {
			return style.Bold(match[2 : len(match)-2])
		})
		if m := numberedItem.FindStringSubmatchIndex(line); m != nil {
			line = line[m[2]:m[3]] + style.Number(line[m[4]:m[5]]) + line[m[6]:]
		}
		lines[i] = line
	}
	return strings.Join(lines, style.Newline)
}

// Section is one headed block of the advice.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sections splits advice into blocks at lines that open with a bold heading
// ("1. **Problem Analysis:** ..."). Text before the first heading is dropped
// when empty and otherwise kept under an empty title.
func Sections(text string) []Section {
	titler := cases.Title(language.English)
	var out []Section
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			title := strings.TrimSuffix(strings.TrimSpace(m[1]), ":")
			out = append(out, Section{
				Title: titler.String(strings.ToLower(strings.TrimSpace(title))),
				Body:  strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[2]), ":")),
			})
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(out) == 0 {
			out = append(out, Section{})
		}
		last := &out[len(out)-1]
		if last.Body != "" {
			last.Body += "\n"
		}
		last.Body += line
	}
	return out
}
