package curve

import (
	"strings"
)

// Theme selects the colours of HTML output.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

func (t Theme) colours() (current, ghost string) {
	if t == Light {
		return "#202020", "#888888"
	}
	return "#FFFFFF", "#777777"
}

// HTML renders each row as a line of coloured spans; empty cells are &nbsp;.
func (g Grid) HTML(theme Theme) []string {
	current, ghost := theme.colours()
	out := make([]string, len(g))
	for i, row := range g {
		var b strings.Builder
		for _, c := range row {
			switch c {
			case Current:
				b.WriteString(`<span style="color:` + current + `">` + string(CurrentGlyph) + `</span>`)
			case Ghost:
				b.WriteString(`<span style="color:` + ghost + `">` + string(GhostGlyph) + `</span>`)
			default:
				b.WriteString("&nbsp;")
			}
		}
		out[i] = b.String()
	}
	return out
}
