// Package cman builds rrdtool graph definitions for the Oracle Connection
// Manager health check (check_oracle_cman.pl).
//
// The check reports three data sources per handler:
//
//	'cmgw001_established'=377c 'cmgw001_refused'=0c 'cmgw001_current'=3;204.80;243.20;0;256
//
// Each handler gets two graphs: current connections with their thresholds,
// and the established/refused connection rates. Graph indices come from two
// counters that both advance by 2 whenever the handler changes, so the
// current-stats graph of a handler is always odd and its global-stats graph
// always even.
package cman

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kylerisse/cmangraph/pkg/datasource"
	"github.com/kylerisse/cmangraph/pkg/rrd"
	"github.com/sirupsen/logrus"
)

// Graph titles as shown by the dashboard.
const (
	CurrentTitle = "CMAN - Current connection statistics"
	GlobalTitle  = "CMAN - Global connection statistics"
)

// DefaultCheckCommand is the plugin whose output these graphs describe.
const DefaultCheckCommand = "check_oracle_cman.pl"

const (
	labelWidth    = 20
	currentFormat = "%8.1lf"
	globalFormat  = "%5.3lf c/s"
)

const (
	colorCurrentArea = "#8470FF"
	colorCurrentLine = "#696969"
	colorEstablished = "#8FBC8F"
	colorRefused     = "#DC143C"
	colorMaxRule     = "#003300"
	colorWarnRule    = "#ffff00"
	colorCritRule    = "#ff0000"
)

var legendFunctions = []string{rrd.LAST, rrd.MAX, rrd.AVERAGE}

// Graph is one graph definition: the dashboard title, rrdtool options and
// the directive body.
type Graph struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Options string `json:"options"`
	Body    string `json:"body"`
}

// GraphIndex returns the graph's position in the template.
func (g Graph) GraphIndex() int { return g.Index }

// GraphOptions returns the rrdtool graph options.
func (g Graph) GraphOptions() string { return g.Options }

// GraphBody returns the rrdtool graph directives.
func (g Graph) GraphBody() string { return g.Body }

// Graphs maps graph index to graph.
type Graphs map[int]Graph

// Sorted returns the graphs in index order.
func (gs Graphs) Sorted() []Graph {
	out := make([]Graph, 0, len(gs))
	for _, g := range gs {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Builder turns CMAN data source records into graph definitions.
// A Builder holds no per-run state and may be shared.
type Builder struct {
	watermark string
	logger    *logrus.Logger
}

// NewBuilder creates a Builder whose graphs carry a watermark naming checkCommand.
// An empty checkCommand means DefaultCheckCommand.
func NewBuilder(checkCommand string, logger *logrus.Logger) *Builder {
	if checkCommand == "" {
		checkCommand = DefaultCheckCommand
	}
	return &Builder{
		watermark: fmt.Sprintf("Template for %s", checkCommand),
		logger:    logger,
	}
}

// Build folds records, in order, into graph definitions. The position of a
// record in the slice names its rrdtool variable (var0, var1, ...).
// Records whose label is not recognized are skipped.
func (b *Builder) Build(records []datasource.Record) Graphs {
	acc := newFold()
	for key, r := range records {
		acc = b.step(acc, key, r)
	}
	return acc.result()
}

// fold is the state carried between records during Build.
type fold struct {
	lastHandler string
	currentIdx  int
	globalIdx   int
	order       []int
	graphs      map[int]*pending
}

type pending struct {
	title   string
	options string
	body    strings.Builder
}

func newFold() *fold {
	return &fold{
		currentIdx: -1,
		globalIdx:  0,
		graphs:     make(map[int]*pending),
	}
}

func (b *Builder) step(acc *fold, key int, r datasource.Record) *fold {
	handler, label := SplitName(r.Name)
	if handler != acc.lastHandler {
		acc.currentIdx += 2
		acc.globalIdx += 2
		acc.lastHandler = handler
	}

	stat := Classify(label)
	var idx int
	switch stat.Group() {
	case CurrentGroup:
		idx = acc.currentIdx
	case GlobalGroup:
		idx = acc.globalIdx
	default:
		b.logger.Debugf("Skipping data source %q: unrecognized label %q.", r.Name, label)
		return acc
	}

	g := acc.graphs[idx]
	if g == nil {
		g = b.newPending(stat.Group(), handler)
		acc.graphs[idx] = g
		acc.order = append(acc.order, idx)
		b.logger.Debugf("Created graph %d (%s) for handler %s.", idx, g.title, handler)
	}

	vname := fmt.Sprintf("var%d", key)
	legend := rrd.Cut(label, labelWidth)
	g.body.WriteString(rrd.Def(vname, r.RRDFile, r.DS, rrd.AVERAGE))

	switch stat {
	case CurrentStat:
		g.body.WriteString(rrd.Area(vname, colorCurrentArea, legend, false))
		g.body.WriteString(rrd.Line(1, vname, colorCurrentLine, ""))
		g.body.WriteString(rrd.GPrint(vname, legendFunctions, currentFormat))
		if r.Max != "" {
			g.body.WriteString(rrd.HRule(r.Max, colorMaxRule, fmt.Sprintf(`Maximum at %s\n`, r.Max)))
		}
		if r.Warn != "" {
			g.body.WriteString(rrd.HRule(r.Warn, colorWarnRule, fmt.Sprintf(`Warning at %s\n`, r.Warn)))
		}
		if r.Crit != "" {
			g.body.WriteString(rrd.HRule(r.Crit, colorCritRule, fmt.Sprintf(`Critical at %s\n`, r.Crit)))
		}
	case Established:
		g.body.WriteString(rrd.Area(vname, colorEstablished, legend, false))
		g.body.WriteString(rrd.GPrint(vname, legendFunctions, globalFormat))
	case Refused:
		g.body.WriteString(rrd.Area(vname, colorRefused, legend, true))
		g.body.WriteString(rrd.GPrint(vname, legendFunctions, globalFormat))
	}

	return acc
}

func (b *Builder) newPending(group Group, handler string) *pending {
	h := quote(handler)
	if group == CurrentGroup {
		return &pending{
			title: CurrentTitle,
			options: fmt.Sprintf(`--vertical-label "connections" -X0 --title "Current connection statistics - handler %s" --rigid --lower=0 --watermark="%s"`,
				h, quote(b.watermark)),
		}
	}
	return &pending{
		title: GlobalTitle,
		options: fmt.Sprintf(`--vertical-label "connections/s" -X0 --alt-y-grid --title "Global connection statistics - handler %s" --rigid --lower=0 --watermark="%s"`,
			h, quote(b.watermark)),
	}
}

// result freezes the accumulated graphs into plain values.
func (acc *fold) result() Graphs {
	out := make(Graphs, len(acc.graphs))
	for _, idx := range acc.order {
		p := acc.graphs[idx]
		out[idx] = Graph{
			Index:   idx,
			Title:   p.title,
			Options: p.options,
			Body:    p.body.String(),
		}
	}
	return out
}

// quote escapes double quotes for use inside a quoted option value.
func quote(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Tally counts records per statistic class.
func Tally(records []datasource.Record) map[Stat]int {
	counts := make(map[Stat]int)
	for _, r := range records {
		_, label := SplitName(r.Name)
		counts[Classify(label)]++
	}
	return counts
}
