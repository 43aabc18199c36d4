package cman

import (
	"regexp"
	"strings"
)

// Stat is the statistic class of a CMAN data source label.
type Stat int

const (
	// Unrecognized labels are dropped without producing a graph or directive.
	Unrecognized Stat = iota
	// CurrentStat is the number of connections currently held by a handler.
	CurrentStat
	// MaxStat is a maximum-connections counter; it is defined but not drawn.
	MaxStat
	// Established is the rate of accepted connections.
	Established
	// Refused is the rate of refused connections, stacked on Established.
	Refused
)

var statNames = map[Stat]string{
	Unrecognized: "unrecognized",
	CurrentStat:  "current",
	MaxStat:      "max",
	Established:  "established",
	Refused:      "refused",
}

func (s Stat) String() string {
	if name, ok := statNames[s]; ok {
		return name
	}
	return "unrecognized"
}

// Group is the graph a statistic class is drawn on.
type Group int

const (
	NoGroup Group = iota
	CurrentGroup
	GlobalGroup
)

// Group returns the graph that s belongs to.
func (s Stat) Group() Group {
	switch s {
	case CurrentStat, MaxStat:
		return CurrentGroup
	case Established, Refused:
		return GlobalGroup
	}
	return NoGroup
}

var (
	currentGroupRe = regexp.MustCompile(`current|max`)
	globalGroupRe  = regexp.MustCompile(`established|refused`)
)

// Classify maps a label (the part of the data source name after the handler)
// to its statistic class. Matching is by substring, and the current-stats
// patterns take precedence over the global ones.
func Classify(label string) Stat {
	switch {
	case currentGroupRe.MatchString(label):
		if strings.Contains(label, "current") {
			return CurrentStat
		}
		return MaxStat
	case globalGroupRe.MatchString(label):
		if strings.Contains(label, "established") {
			return Established
		}
		return Refused
	}
	return Unrecognized
}

// SplitName splits a data source name into handler and label on the first
// underscore. A name without an underscore is all handler and has no label.
func SplitName(name string) (handler string, label string) {
	handler, label, _ = strings.Cut(name, "_")
	return handler, label
}
