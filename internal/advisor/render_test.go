package advisor

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

const sampleAdvice = `Here is my assessment.
1. **Problem Analysis:** 3640 kbps is **well below** the floor.
2. **netflix requirements:** SDR needs 10,000 kbps.
3. **Recommendation**: Target 12,000-15,000 kbps.
   Headroom absorbs encoder variance.
4. **Key Settings:** H.264 High Profile <Level 4.2>.`

func TestHighlightHTML(t *testing.T) {
	out := Highlight(sampleAdvice, HTMLStyle())
	for _, want := range []string{
		"<b>1.</b> <strong>Problem Analysis:</strong>",
		"<strong>well below</strong>",
		"&lt;Level 4.2&gt;",
		"<br />\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Fatalf("bold markers should be consumed: %q", out)
	}
}

func TestHighlightCustomStyle(t *testing.T) {
	style := Style{
		Bold:    strings.ToUpper,
		Number:  func(s string) string { return "[" + s + "]" },
		Escape:  func(s string) string { return s },
		Newline: "\n",
	}
	got := Highlight("  2. use **high** profile\nplain 3. text", style)
	want := "  [2.] use HIGH profile\nplain 3. text"
	if got != want {
		t.Fatalf("Highlight = %q, want %q", got, want)
	}
}

func TestHighlightTerminalWithoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	out := Highlight(sampleAdvice, TerminalStyle())
	if !strings.Contains(out, "1. Problem Analysis: 3640 kbps is well below the floor.") {
		t.Fatalf("unexpected terminal rendering %q", out)
	}
	if strings.Contains(out, "**") || strings.Contains(out, "\x1b[") {
		t.Fatalf("expected plain text, got %q", out)
	}
}

func TestHighlightTerminalColors(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	out := Highlight("1. **High** profile", TerminalStyle())
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "High") {
		t.Fatalf("expected ANSI attributes, got %q", out)
	}
}

func TestSections(t *testing.T) {
	sections := Sections(sampleAdvice)
	titles := []string{"", "Problem Analysis", "Netflix Requirements", "Recommendation", "Key Settings"}
	if len(sections) != len(titles) {
		t.Fatalf("expected %d sections, got %+v", len(titles), sections)
	}
	for i, title := range titles {
		if sections[i].Title != title {
			t.Fatalf("section %d title = %q, want %q", i, sections[i].Title, title)
		}
	}
	if sections[0].Body != "Here is my assessment." {
		t.Fatalf("unexpected preamble %q", sections[0].Body)
	}
	if sections[3].Body != "Target 12,000-15,000 kbps.\nHeadroom absorbs encoder variance." {
		t.Fatalf("unexpected recommendation body %q", sections[3].Body)
	}
}
