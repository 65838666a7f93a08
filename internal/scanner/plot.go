package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxPlotLen = 1200

// ExtractPlot pulls descriptive paragraph text out of a feed item body.
// The second and third paragraphs joined are preferred because the first
// is usually boilerplate; the fallback order is second, third, first.
func ExtractPlot(bodyHTML string) string {
	if strings.TrimSpace(bodyHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		return ""
	}

	var paras []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			paras = append(paras, text)
		}
	})
	return pickPlot(paras)
}

func pickPlot(paras []string) string {
	get := func(i int) string {
		if i < len(paras) {
			return strings.TrimSpace(paras[i])
		}
		return ""
	}
	p1, p2, p3 := get(0), get(1), get(2)

	var parts []string
	for _, p := range []string{p2, p3} {
		if p != "" && (len(parts) == 0 || parts[0] != p) {
			parts = append(parts, p)
		}
	}
	if joined := strings.Join(parts, "\n\n"); joined != "" {
		return truncatePlot(joined)
	}

	for _, p := range []string{p2, p3, p1} {
		if p != "" {
			return truncatePlot(p)
		}
	}
	return ""
}

func truncatePlot(s string) string {
	if len(s) <= maxPlotLen {
		return s
	}
	cut := maxPlotLen
	// Back off so a multibyte rune is not split at the boundary.
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
