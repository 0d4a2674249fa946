package query

import (
	"fmt"
	"testing"
	"time"

	"fleetops/internal/apierr"
)

func docs(n int, field string, values ...any) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": fmt.Sprintf("r%d", i)}
		if len(values) > 0 {
			out[i][field] = values[i%len(values)]
		}
	}
	return out
}

func TestPaginationArithmetic(t *testing.T) {
	collection := docs(23, "severity", "Critical")
	for page := 1; page <= 5; page++ {
		for _, pageSize := range []int{1, 7, 10, 23, 50} {
			p, err := Run(collection, nil, Sort{}, page, pageSize)
			if err != nil {
				t.Fatalf("page=%d size=%d: %v", page, pageSize, err)
			}
			want := p.Total - (page-1)*pageSize
			if want < 0 {
				want = 0
			}
			if want > pageSize {
				want = pageSize
			}
			if len(p.Items) != want {
				t.Errorf("page=%d size=%d: got %d items, want %d", page, pageSize, len(p.Items), want)
			}
			if p.Total != 23 {
				t.Errorf("total drifted: %d", p.Total)
			}
		}
	}
}

func TestPaginationBoundaryScenario(t *testing.T) {
	collection := docs(23, "severity", "Critical")
	expect := map[int]int{1: 10, 2: 10, 3: 3, 4: 0}
	for page, wantLen := range expect {
		p, err := Run(collection, Filter{Equals("severity", "Critical")}, Sort{}, page, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Items) != wantLen {
			t.Errorf("page %d: got %d items, want %d", page, len(p.Items), wantLen)
		}
		if p.Total != 23 {
			t.Errorf("page %d: total=%d, want 23", page, p.Total)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	collection := docs(3, "", nil)
	if _, err := Run(collection, nil, Sort{}, 1, 0); apierr.KindOf(err) != apierr.ValidationFailure {
		t.Errorf("pageSize=0: got %v", err)
	}
	if _, err := Run(collection, nil, Sort{}, 0, 10); apierr.KindOf(err) != apierr.ValidationFailure {
		t.Errorf("page=0: got %v", err)
	}
	bad := Filter{Min("cpu_percent", 90), Max("cpu_percent", 10)}
	if _, err := Run(collection, bad, Sort{}, 1, 10); apierr.KindOf(err) != apierr.ValidationFailure {
		t.Errorf("min>max: got %v", err)
	}
}

func TestEmptyCollection(t *testing.T) {
	for _, page := range []int{1, 2, 99} {
		p, err := Run(nil, Filter{Equals("status", "Online")}, Sort{Field: "id"}, page, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Items) != 0 || p.Total != 0 {
			t.Errorf("page %d: got %d/%d, want 0/0", page, len(p.Items), p.Total)
		}
	}
}

func TestFilterIdempotence(t *testing.T) {
	collection := docs(20, "severity", "Info", "Warning", "Critical", "Emergency")
	f := Filter{Equals("severity", "Warning")}
	first, err := Run(collection, f, Sort{}, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(collection, f, Sort{}, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if first.Total != second.Total || len(first.Items) != len(second.Items) {
		t.Fatalf("idempotence broken: %d/%d vs %d/%d", first.Total, len(first.Items), second.Total, len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i]["id"] != second.Items[i]["id"] {
			t.Errorf("item %d differs between identical queries", i)
		}
	}
}

func TestSeverityFilterExcludesOthers(t *testing.T) {
	collection := docs(40, "severity", "Info", "Critical")
	p, err := Run(collection, Filter{Equals("severity", "Critical")}, Sort{}, 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 20 {
		t.Fatalf("total=%d, want 20", p.Total)
	}
	for _, item := range p.Items {
		if item["severity"] != "Critical" {
			t.Errorf("leaked severity %v", item["severity"])
		}
	}
}

func TestStableSortUnderTies(t *testing.T) {
	// All records share the sort key; insertion order must hold on any page.
	collection := docs(12, "speed_kmh", 50.0)
	var gathered []string
	for page := 1; page <= 4; page++ {
		p, err := Run(collection, nil, Sort{Field: "speed_kmh"}, page, 3)
		if err != nil {
			t.Fatal(err)
		}
		for _, item := range p.Items {
			gathered = append(gathered, item["id"].(string))
		}
	}
	for i, id := range gathered {
		if want := fmt.Sprintf("r%d", i); id != want {
			t.Fatalf("tie order broken at %d: got %s, want %s", i, id, want)
		}
	}
}

func TestSortDirectionsAndTypes(t *testing.T) {
	collection := []map[string]any{
		{"id": "a", "speed_kmh": 80.0, "ts": "2026-08-30T10:00:00Z"},
		{"id": "b", "speed_kmh": 20.0, "ts": "2026-08-31T10:00:00Z"},
		{"id": "c", "speed_kmh": 50.0, "ts": "2026-08-29T10:00:00Z"},
	}
	p, err := Run(collection, nil, Sort{Field: "speed_kmh"}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Items[0]["id"] != "b" || p.Items[2]["id"] != "a" {
		t.Errorf("ascending numeric sort wrong: %v", p.Items)
	}
	p, _ = Run(collection, nil, Sort{Field: "ts", Descending: true}, 1, 10)
	if p.Items[0]["id"] != "b" || p.Items[2]["id"] != "c" {
		t.Errorf("descending timestamp sort wrong: %v", p.Items)
	}
}

func TestDateRangeBounds(t *testing.T) {
	mk := func(id, ts string) map[string]any { return map[string]any{"id": id, "timestamp": ts} }
	collection := []map[string]any{
		mk("old", "2026-08-20T00:00:00Z"),
		mk("mid", "2026-08-25T12:00:00Z"),
		mk("new", "2026-08-31T00:00:00Z"),
	}
	from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	p, err := Run(collection, Filter{DateRange("timestamp", &from, &to)}, Sort{}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 2 {
		t.Errorf("inclusive range total=%d, want 2 (upper bound is inclusive)", p.Total)
	}

	// Nil bounds are open on that side.
	p, _ = Run(collection, Filter{DateRange("timestamp", &from, nil)}, Sort{}, 1, 10)
	if p.Total != 2 {
		t.Errorf("open upper: total=%d, want 2", p.Total)
	}
	p, _ = Run(collection, Filter{DateRange("timestamp", nil, nil)}, Sort{}, 1, 10)
	if p.Total != 3 {
		t.Errorf("fully open: total=%d, want 3", p.Total)
	}
}

func TestMinMaxThresholdsAndNestedFields(t *testing.T) {
	collection := []map[string]any{
		{"id": "a", "resources": map[string]any{"cpu_percent": 30.0}},
		{"id": "b", "resources": map[string]any{"cpu_percent": 75.0}},
		{"id": "c", "resources": map[string]any{"cpu_percent": 92.0}},
	}
	p, err := Run(collection, Filter{Min("resources.cpu_percent", 70), Max("resources.cpu_percent", 90)}, Sort{}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 1 || p.Items[0]["id"] != "b" {
		t.Errorf("threshold filter wrong: %+v", p)
	}
}

func TestEmptyEqualsMatchesEverything(t *testing.T) {
	collection := docs(5, "status", "Online", "Offline")
	p, err := Run(collection, Filter{Equals("status", "")}, Sort{}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 5 {
		t.Errorf("blank filter should match all, got %d", p.Total)
	}
}
