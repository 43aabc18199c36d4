// Package datasource maps parsed performance data onto the RRD data sources
// that hold it, following the PNP4Nagios storage layout.
package datasource

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kylerisse/cmangraph/pkg/perfdata"
)

// StorageType selects how samples of one service are spread over RRD files.
type StorageType string

const (
	// StorageSingle keeps every label of a service in one RRD, one DS per label.
	StorageSingle StorageType = "single"
	// StorageMultiple keeps one RRD per label, each with a single DS.
	StorageMultiple StorageType = "multiple"
)

// ParseStorageType validates a storage type name.
func ParseStorageType(s string) (StorageType, error) {
	switch st := StorageType(strings.ToLower(strings.TrimSpace(s))); st {
	case StorageSingle, StorageMultiple:
		return st, nil
	}
	return "", fmt.Errorf("unknown storage type %q (want %q or %q)", s, StorageSingle, StorageMultiple)
}

// Record describes one named data source and where its samples live.
// Thresholds are raw strings; an empty string means the plugin did not
// report that threshold.
type Record struct {
	Name    string `json:"name"` // "<handler>_<label>"
	RRDFile string `json:"rrdfile"`
	DS      string `json:"ds"`
	Min     string `json:"min,omitempty"`
	Max     string `json:"max,omitempty"`
	Warn    string `json:"warn,omitempty"`
	Crit    string `json:"crit,omitempty"`
}

// Options controls where RRD files are expected.
type Options struct {
	RRDDir  string
	Storage StorageType
}

// FromSamples builds one Record per sample, preserving sample order.
func FromSamples(host string, service string, samples []perfdata.Sample, opts Options) []Record {
	hostDir := filepath.Join(opts.RRDDir, cleanName(host))
	svc := cleanName(service)

	records := make([]Record, 0, len(samples))
	for i, s := range samples {
		r := Record{
			Name: s.Label,
			Min:  s.Min,
			Max:  s.Max,
			Warn: s.Warn,
			Crit: s.Crit,
		}
		if opts.Storage == StorageMultiple {
			r.RRDFile = filepath.Join(hostDir, fmt.Sprintf("%s_%s.rrd", svc, cleanName(s.Label)))
			r.DS = "1"
		} else {
			r.RRDFile = filepath.Join(hostDir, svc+".rrd")
			r.DS = strconv.Itoa(i + 1)
		}
		records = append(records, r)
	}
	return records
}

// cleanName replaces characters that cannot appear in an RRD file name.
func cleanName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '/', '\\':
			return '_'
		}
		return r
	}, s)
}
