package util

import (
	"slices"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]bool{"training": true, "end": false, "start": true})
	want := []string{"end", "start", "training"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(SortedKeys(map[string]int{})) != 0 {
		t.Error("expected empty keys for empty map")
	}
}
