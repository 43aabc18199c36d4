package datasource

import (
	"path/filepath"
	"testing"

	"github.com/kylerisse/cmangraph/pkg/perfdata"
)

var cmanSamples = []perfdata.Sample{
	{Label: "cmgw001_established", Value: 377, Unit: "c"},
	{Label: "cmgw001_refused", Value: 0, Unit: "c"},
	{Label: "cmgw001_current", Value: 3, Warn: "204.80", Crit: "243.20", Min: "0", Max: "256"},
}

func TestFromSamples_Single(t *testing.T) {
	records := FromSamples("db01", "CMAN", cmanSamples, Options{RRDDir: "/var/rrd", Storage: StorageSingle})
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantFile := filepath.Join("/var/rrd", "db01", "CMAN.rrd")
	for i, r := range records {
		if r.RRDFile != wantFile {
			t.Errorf("record %d: expected rrdfile %q, got %q", i, wantFile, r.RRDFile)
		}
		if want := []string{"1", "2", "3"}[i]; r.DS != want {
			t.Errorf("record %d: expected DS %q, got %q", i, want, r.DS)
		}
		if r.Name != cmanSamples[i].Label {
			t.Errorf("record %d: expected name %q, got %q", i, cmanSamples[i].Label, r.Name)
		}
	}

	cur := records[2]
	if cur.Max != "256" || cur.Warn != "204.80" || cur.Crit != "243.20" || cur.Min != "0" {
		t.Errorf("thresholds not carried over: %+v", cur)
	}
}

func TestFromSamples_Multiple(t *testing.T) {
	records := FromSamples("db01", "CMAN", cmanSamples, Options{RRDDir: "/var/rrd", Storage: StorageMultiple})

	want := filepath.Join("/var/rrd", "db01", "CMAN_cmgw001_refused.rrd")
	if records[1].RRDFile != want {
		t.Errorf("expected rrdfile %q, got %q", want, records[1].RRDFile)
	}
	for i, r := range records {
		if r.DS != "1" {
			t.Errorf("record %d: expected DS 1, got %q", i, r.DS)
		}
	}
}

func TestFromSamples_CleansNames(t *testing.T) {
	records := FromSamples("db 01", "Oracle: CMAN/services", cmanSamples[:1], Options{RRDDir: "rrds", Storage: StorageSingle})
	want := filepath.Join("rrds", "db_01", "Oracle__CMAN_services.rrd")
	if records[0].RRDFile != want {
		t.Errorf("expected rrdfile %q, got %q", want, records[0].RRDFile)
	}
	if records[0].Name != "cmgw001_established" {
		t.Errorf("record name should not be cleaned, got %q", records[0].Name)
	}
}

func TestFromSamples_Empty(t *testing.T) {
	records := FromSamples("h", "s", nil, Options{})
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseStorageType(t *testing.T) {
	tests := []struct {
		input   string
		want    StorageType
		wantErr bool
	}{
		{"single", StorageSingle, false},
		{"MULTIPLE", StorageMultiple, false},
		{" single ", StorageSingle, false},
		{"", "", true},
		{"both", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStorageType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStorageType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStorageType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
