package rrd

import "strings"

func expandTimeLength(timeLength string) string {
	switch timeLength {
	case "4h":
		return "four hours"
	case "25h":
		return "twenty-five hours"
	case "1d":
		return "one day"
	case "1w":
		return "one week"
	case "31d":
		return "one month"
	case "1y":
		return "one year"
	}
	return timeLength
}

// fileSafe replaces characters that would break a graph file path.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '/', '\\':
			return '_'
		}
		return r
	}, s)
}

// escapeLegend escapes legend text for use inside a quoted directive field.
// rrdtool uses colons as field delimiters, so literal colons become \:.
// Backslash sequences such as \n are left alone; callers use them on purpose.
func escapeLegend(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}
