// Package perfdata parses Nagios plugin performance data.
//
// A performance data string is a space separated list of
//
//	'label'=value[UOM];[warn];[crit];[min];[max]
//
// Labels containing spaces must be single-quoted; a doubled quote inside a
// quoted label stands for a literal quote. Threshold fields are kept as the
// raw strings the plugin printed so that graph legends show them verbatim.
package perfdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sample is one label=value entry from a performance data string.
type Sample struct {
	Label string
	Value float64 // NaN when the plugin reported "U"
	Unit  string
	Warn  string
	Crit  string
	Min   string
	Max   string
}

// Parse splits s into samples, in the order the plugin printed them.
// An empty or all-blank string yields no samples and no error.
func Parse(s string) ([]Sample, error) {
	var samples []Sample

	rest := strings.TrimSpace(s)
	for rest != "" {
		label, after, err := readLabel(rest)
		if err != nil {
			return nil, err
		}

		field, remainder := cutSpace(after)
		rest = strings.TrimLeft(remainder, whitespace)

		sample, err := parseField(label, field)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// whitespace separates samples.
const whitespace = " \t\r\n"

// cutSpace splits s around the first run of whitespace.
func cutSpace(s string) (string, string) {
	i := strings.IndexAny(s, whitespace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], whitespace)
}

// readLabel consumes a label and its '=' from the front of s and returns the
// label and everything after the '='.
func readLabel(s string) (string, string, error) {
	if strings.HasPrefix(s, "'") {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			if s[i] != '\'' {
				b.WriteByte(s[i])
				continue
			}
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			// closing quote must be followed by '='
			if i+1 >= len(s) || s[i+1] != '=' {
				return "", "", fmt.Errorf("missing '=' after quoted label %q", b.String())
			}
			if b.Len() == 0 {
				return "", "", fmt.Errorf("empty label in %q", s)
			}
			return b.String(), s[i+2:], nil
		}
		return "", "", fmt.Errorf("unterminated quoted label in %q", s)
	}

	token, _ := cutSpace(s)
	label, _, found := strings.Cut(token, "=")
	if !found {
		return "", "", fmt.Errorf("missing '=' in %q", token)
	}
	if label == "" {
		return "", "", fmt.Errorf("empty label in %q", token)
	}
	return label, s[len(label)+1:], nil
}

// parseField parses "value[UOM];warn;crit;min;max" for the given label.
func parseField(label, field string) (Sample, error) {
	parts := strings.Split(field, ";")

	value, unit, err := splitValue(parts[0])
	if err != nil {
		return Sample{}, fmt.Errorf("label %q: %w", label, err)
	}

	sample := Sample{Label: label, Value: value, Unit: unit}
	thresholds := []*string{&sample.Warn, &sample.Crit, &sample.Min, &sample.Max}
	for i, t := range thresholds {
		if i+1 < len(parts) {
			*t = strings.TrimSpace(parts[i+1])
		}
	}
	return sample, nil
}

// splitValue separates the numeric value from its unit of measurement.
func splitValue(raw string) (float64, string, error) {
	if raw == "U" {
		return math.NaN(), "", nil
	}

	end := 0
	for end < len(raw) && strings.IndexByte("0123456789.,-+eE", raw[end]) >= 0 {
		end++
	}
	// "e"/"E" can only belong to the number if digits follow; otherwise it is part of the unit
	for end > 0 && (raw[end-1] == 'e' || raw[end-1] == 'E') {
		end--
	}

	num := strings.ReplaceAll(raw[:end], ",", ".")
	if num == "" {
		return 0, "", fmt.Errorf("missing value in %q", raw)
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid value %q: %w", raw, err)
	}
	return value, raw[end:], nil
}
