package rrd

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Consolidation functions accepted by DEF and GPRINT.
const (
	AVERAGE = "AVERAGE"
	MAX     = "MAX"
	MIN     = "MIN"
	LAST    = "LAST"
)

// Each directive helper returns a single rrdtool graph directive followed by
// a space, so a graph body is built by plain concatenation.

// Def reads data source ds of rrdFile into vname. The path is quoted so that
// directories containing spaces survive SplitArgs.
func Def(vname string, rrdFile string, ds string, cf string) string {
	path := strings.ReplaceAll(rrdFile, `"`, `\"`)
	path = strings.ReplaceAll(path, ":", `\:`)
	return fmt.Sprintf(`DEF:%s="%s":%s:%s `, vname, path, ds, cf)
}

// Area fills the region under vname. When stack is set the area is drawn on
// top of the previous area or line.
func Area(vname string, color string, legend string, stack bool) string {
	d := fmt.Sprintf(`AREA:%s%s:"%s"`, vname, color, escapeLegend(legend))
	if stack {
		d += ":STACK"
	}
	return d + " "
}

// Line plots vname as a line of the given width (1, 2 or 3).
// An empty legend leaves the line out of the legend.
func Line(width int, vname string, color string, legend string) string {
	if width < 1 {
		width = 1
	}
	if width > 3 {
		width = 3
	}
	d := fmt.Sprintf("LINE%d:%s%s", width, vname, color)
	if legend != "" {
		d += fmt.Sprintf(`:"%s"`, escapeLegend(legend))
	}
	return d + " "
}

// HRule draws a horizontal line at value.
func HRule(value string, color string, legend string) string {
	return fmt.Sprintf(`HRULE:%s%s:"%s" `, value, color, escapeLegend(legend))
}

// GPrint prints one legend value per consolidation function, each labelled
// with the function name, and ends the legend row.
func GPrint(vname string, cfs []string, format string) string {
	var b strings.Builder
	for i, cf := range cfs {
		text := fmt.Sprintf("%s %s", format, cfName(cf))
		if i == len(cfs)-1 {
			text += `\n`
		}
		fmt.Fprintf(&b, `GPRINT:%s:%s:"%s" `, vname, cf, escapeLegend(text))
	}
	return b.String()
}

// cfName turns AVERAGE into Average.
func cfName(cf string) string {
	if cf == "" {
		return cf
	}
	lower := strings.ToLower(cf)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Cut pads or truncates s to exactly width characters so that legends line up.
func Cut(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(s)
	if n > width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// SplitArgs splits an options or directive string into arguments for
// rrdtool. Whitespace separates arguments except inside double quotes, the
// quotes themselves are dropped, and \" stands for a literal quote. Every
// other backslash is kept so that rrdtool still sees sequences like \n and \:.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '"':
			cur.WriteByte('"')
			started = true
			i++
		case c == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (c == ' ' || c == '\t' || c == '\n'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(c)
			started = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
