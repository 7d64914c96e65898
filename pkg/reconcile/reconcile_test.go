package reconcile_test

import (
	"testing"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/reconcile"
)

// Helper to build a record with one reported measure.
func record(tag emissions.SourceTag, entity, vessel string, period int, m emissions.Measure, v float64) *emissions.Record {
	rec := emissions.NewRecord(tag, entity, vessel, period)
	rec.SetValue(m, v)
	return rec
}

func precedence(tags ...emissions.SourceTag) *reconcile.SourcePrecedence {
	return reconcile.NewSourcePrecedence(tags)
}

func TestMergeHigherPrecedenceOverrides(t *testing.T) {
	low := record("low", "ACME", "V1", 2021, emissions.MeasureCO2Total, 10)
	high := record("high", "ACME", "V1", 2021, emissions.MeasureCO2Total, 99)

	// Run both input orderings: only source identity may decide.
	orderings := [][]*emissions.Record{
		{low, high},
		{high, low},
	}

	for i, input := range orderings {
		merger := reconcile.NewMerger(precedence("low", "high"))
		result, err := merger.Merge(input)
		if err != nil {
			t.Fatalf("ordering %d: Merge failed: %v", i, err)
		}
		if len(result.Records) != 1 {
			t.Fatalf("ordering %d: expected 1 reconciled record, got %d", i, len(result.Records))
		}

		got, ok := result.Records[0].Value(emissions.MeasureCO2Total)
		if !ok || got != 99 {
			t.Errorf("ordering %d: expected co2_total=99 from high-precedence source, got %v (reported=%v)", i, got, ok)
		}
		if origin, _ := result.Records[0].OriginOf("co2_total"); origin != "high" {
			t.Errorf("ordering %d: expected origin high, got %s", i, origin)
		}
	}
}

func TestMergeNullNeverOverrides(t *testing.T) {
	// Low precedence reports fuel; high precedence reports only CO2.
	low := record("low", "ACME", "V1", 2022, emissions.MeasureFuelTotal, 100)
	high := record("high", "ACME", "V1", 2022, emissions.MeasureCO2Total, 50)

	merger := reconcile.NewMerger(precedence("low", "high"))
	result, err := merger.Merge([]*emissions.Record{high, low})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 reconciled record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	if fuel, ok := rec.Value(emissions.MeasureFuelTotal); !ok || fuel != 100 {
		t.Errorf("expected fuel_total=100 to survive the null override, got %v (reported=%v)", fuel, ok)
	}
	if co2, ok := rec.Value(emissions.MeasureCO2Total); !ok || co2 != 50 {
		t.Errorf("expected co2_total=50, got %v (reported=%v)", co2, ok)
	}
	if origin, _ := rec.OriginOf("fuel_total"); origin != "low" {
		t.Errorf("expected fuel origin low, got %s", origin)
	}
	if origin, _ := rec.OriginOf("co2_total"); origin != "high" {
		t.Errorf("expected co2 origin high, got %s", origin)
	}
}

func TestMergeAttrsFollowPrecedence(t *testing.T) {
	old := emissions.NewRecord("low", "ACME", "V1", 2020)
	old.SetAttr(emissions.AttrVesselName, "MV Old Name")
	old.SetAttr(emissions.AttrVesselType, "Bulk carrier")

	updated := emissions.NewRecord("high", "ACME", "V1", 2020)
	updated.SetAttr(emissions.AttrVesselName, "MV New Name")

	merger := reconcile.NewMerger(precedence("low", "high"))
	result, err := merger.Merge([]*emissions.Record{old, updated})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	rec := result.Records[0]
	if name, _ := rec.AttrValue(emissions.AttrVesselName); name != "MV New Name" {
		t.Errorf("expected vessel_name override, got %q", name)
	}
	if typ, _ := rec.AttrValue(emissions.AttrVesselType); typ != "Bulk carrier" {
		t.Errorf("expected vessel_type to survive, got %q", typ)
	}
}

func TestMergeGroupsByKey(t *testing.T) {
	records := []*emissions.Record{
		record("a", "ACME", "V1", 2020, emissions.MeasureCO2Total, 1),
		record("a", "ACME", "V1", 2021, emissions.MeasureCO2Total, 2),
		record("a", "ACME", "V2", 2020, emissions.MeasureCO2Total, 3),
		record("a", "OTHER", "V1", 2020, emissions.MeasureCO2Total, 4),
		record("b", "ACME", "V1", 2020, emissions.MeasureCO2Total, 5),
	}

	merger := reconcile.NewMerger(precedence("a", "b"))
	result, err := merger.Merge(records)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// 4 distinct keys out of 5 inputs
	if result.Keys != 4 || len(result.Records) != 4 {
		t.Fatalf("expected 4 distinct keys, got keys=%d records=%d", result.Keys, len(result.Records))
	}
	if result.Inputs != 5 {
		t.Errorf("expected 5 inputs, got %d", result.Inputs)
	}

	// Output sorted by key
	for i := 1; i < len(result.Records); i++ {
		if result.Records[i-1].Key().Compare(result.Records[i].Key()) >= 0 {
			t.Errorf("records not sorted by key: %s before %s",
				result.Records[i-1].Key(), result.Records[i].Key())
		}
	}

	// The shared key merged to the higher-precedence value
	for _, rec := range result.Records {
		if rec.Key() == (emissions.Key{Entity: "ACME", Vessel: "V1", Period: 2020}) {
			if v, _ := rec.Value(emissions.MeasureCO2Total); v != 5 {
				t.Errorf("expected co2_total=5 for merged key, got %v", v)
			}
		}
	}
}

func TestMergeSameSourceDuplicates(t *testing.T) {
	first := record("a", "ACME", "V1", 2020, emissions.MeasureFuelTotal, 10)
	second := emissions.NewRecord("a", "ACME", "V1", 2020)
	second.SetValue(emissions.MeasureCO2Total, 20)

	merger := reconcile.NewMerger(precedence("a"))
	result, err := merger.Merge([]*emissions.Record{first, second})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if result.SameSourceDuplicates != 1 {
		t.Errorf("expected 1 same-source duplicate, got %d", result.SameSourceDuplicates)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected duplicates to coalesce into 1 record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	if fuel, ok := rec.Value(emissions.MeasureFuelTotal); !ok || fuel != 10 {
		t.Errorf("expected fuel_total=10 from first row, got %v (reported=%v)", fuel, ok)
	}
	if co2, ok := rec.Value(emissions.MeasureCO2Total); !ok || co2 != 20 {
		t.Errorf("expected co2_total=20 from second row, got %v (reported=%v)", co2, ok)
	}
}

func TestMergeUnknownSourceFails(t *testing.T) {
	stray := record("unlisted", "ACME", "V1", 2020, emissions.MeasureCO2Total, 1)

	merger := reconcile.NewMerger(precedence("a", "b"))
	_, err := merger.Merge([]*emissions.Record{stray})
	if err == nil {
		t.Fatal("expected error for source missing from the precedence order")
	}
	var recErr *errors.ReconcileError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected ReconcileError, got %T: %v", err, err)
	}
	if recErr.Source != "unlisted" {
		t.Errorf("expected error to name the stray source, got %s", recErr.Source)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	merger := reconcile.NewMerger(precedence("a"))
	result, err := merger.Merge(nil)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(result.Records) != 0 || result.Keys != 0 || result.Inputs != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
