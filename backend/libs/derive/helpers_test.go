package derive

import (
	"math"
	"testing"
)

func mustTable(t *testing.T, names []string, columns ...[]float64) *Table {
	t.Helper()
	table, err := NewTable(names, columns)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func approxEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d samples, got %d", name, len(want), len(got))
	}
	for i := range want {
		if IsMissing(want[i]) {
			if !IsMissing(got[i]) {
				t.Fatalf("%s[%d]: expected missing, got %v", name, i, got[i])
			}
			continue
		}
		if !approxEqual(got[i], want[i], 1e-9) {
			t.Fatalf("%s[%d]: expected %v, got %v", name, i, want[i], got[i])
		}
	}
}
