package spec

import (
	"sync"
	"testing"
)

func TestLogicalName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		wire string
		want string
	}{
		{"settlementDate", "settlement_date"},
		{"nationalGridBmUnit", "national_grid_bm_unit"},
		{"publishTime", "publish_time"},
		{"ABUC", "abuc"},
		{"time-from", "time_from"},
		{"already_snake", "already_snake"},
		{"totalRecords", "total_records"},
		{"", "field"},
	}
	for _, tc := range cases {
		if got := LogicalName(tc.wire); got != tc.want {
			t.Errorf("LogicalName(%q) = %q, want %q", tc.wire, got, tc.want)
		}
	}
}

func TestLogicalNameIsStable(t *testing.T) {
	t.Parallel()

	// The alias round-trip depends on the derivation being pure.
	for _, wire := range []string{"settlementDate", "fuelType", "bmUnit"} {
		a, b := LogicalName(wire), LogicalName(wire)
		if a != b {
			t.Fatalf("LogicalName(%q) not stable: %q vs %q", wire, a, b)
		}
	}
}

func TestFieldDefKeepsWireAlias(t *testing.T) {
	t.Parallel()

	// The wire alias is stored alongside the logical name, so a field built
	// from a wire name carries the exact upstream spelling back out.
	wire := "settlementDate"
	fd := FieldDef{Name: LogicalName(wire), WireName: wire}
	if fd.WireName != wire {
		t.Fatalf("stored alias changed: %q", fd.WireName)
	}
	if got := LogicalName(fd.WireName); got != fd.Name {
		t.Fatalf("re-deriving from the stored alias gave %q, want %q", got, fd.Name)
	}
}

func TestNamingConcurrent(t *testing.T) {
	t.Parallel()

	// ExportedName and ParamIdent must be callable from concurrent
	// goroutines; run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := ExportedName("settlement_date"); got != "SettlementDate" {
					t.Errorf("ExportedName = %q", got)
					return
				}
				if got := ParamIdent("national_grid_bm_unit"); got != "nationalGridBmUnit" {
					t.Errorf("ParamIdent = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEscapeIdent(t *testing.T) {
	t.Parallel()

	if got := EscapeIdent("type"); got != "type_" {
		t.Errorf("EscapeIdent(type) = %q", got)
	}
	if got := EscapeIdent("range"); got != "range_" {
		t.Errorf("EscapeIdent(range) = %q", got)
	}
	if got := EscapeIdent("from"); got != "from" {
		t.Errorf("EscapeIdent(from) = %q", got)
	}
}

func TestExportedName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		logical string
		want    string
	}{
		{"settlement_date", "SettlementDate"},
		{"abuc", "Abuc"},
		{"publish_time", "PublishTime"},
		{"", "Field"},
	}
	for _, tc := range cases {
		if got := ExportedName(tc.logical); got != tc.want {
			t.Errorf("ExportedName(%q) = %q, want %q", tc.logical, got, tc.want)
		}
	}
}

func TestParamIdent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		logical string
		want    string
	}{
		{"settlement_date", "settlementDate"},
		{"type", "type_"},
		{"from", "from"},
		{"bm_unit", "bmUnit"},
	}
	for _, tc := range cases {
		if got := ParamIdent(tc.logical); got != tc.want {
			t.Errorf("ParamIdent(%q) = %q, want %q", tc.logical, got, tc.want)
		}
	}
}

func TestModelName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"AbucRow", "AbucRow"},
		{"abuc", "Abuc"},
		{"Insights.Api.Models.AbucRow", "AbucRow"},
		{"Insights.Api.Models.ResponseWithMetadata-1_Abuc.AbucRow", "AbucRow_ResponseWithMetadata"},
		{"DatasetResponse-1_Abuc.AbucRow", "AbucRow_DatasetResponse"},
		{"Response-1_Abuc.AbucRow", "AbucRow_Response"},
		{"2Row", "Model_2Row"},
		{"", "UnnamedModel"},
	}
	for _, tc := range cases {
		if got := ModelName(tc.raw); got != tc.want {
			t.Errorf("ModelName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
