package cman

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Stat
	}{
		{"current", CurrentStat},
		{"max", MaxStat},
		{"maxconn", MaxStat},
		{"max_current", CurrentStat},
		{"established", Established},
		{"refused", Refused},
		{"established_refused", Established},
		{"current_refused", CurrentStat},
		{"uptime", Unrecognized},
		{"", Unrecognized},
		{"CURRENT", Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Classify(tt.label); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.label, got, tt.want)
			}
		})
	}
}

func TestStat_Group(t *testing.T) {
	tests := []struct {
		stat Stat
		want Group
	}{
		{CurrentStat, CurrentGroup},
		{MaxStat, CurrentGroup},
		{Established, GlobalGroup},
		{Refused, GlobalGroup},
		{Unrecognized, NoGroup},
	}

	for _, tt := range tests {
		t.Run(tt.stat.String(), func(t *testing.T) {
			if got := tt.stat.Group(); got != tt.want {
				t.Errorf("%s.Group() = %d, want %d", tt.stat, got, tt.want)
			}
		})
	}
}

func TestStat_String(t *testing.T) {
	if Stat(99).String() != "unrecognized" {
		t.Errorf("expected out-of-range stat to print as unrecognized, got %q", Stat(99).String())
	}
	if Refused.String() != "refused" {
		t.Errorf("expected refused, got %q", Refused.String())
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name        string
		wantHandler string
		wantLabel   string
	}{
		{"cmgw001_current", "cmgw001", "current"},
		{"cmon_max_current", "cmon", "max_current"},
		{"nounderscore", "nounderscore", ""},
		{"_current", "", "current"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, l := SplitName(tt.name)
			if h != tt.wantHandler || l != tt.wantLabel {
				t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.name, h, l, tt.wantHandler, tt.wantLabel)
			}
		})
	}
}
