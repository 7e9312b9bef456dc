package domain

import "testing"

func TestMilestoneFor_MilestoneCounts(t *testing.T) {
	for _, count := range []int{3, 7, 14, 21, 30} {
		m := MilestoneFor(count)
		if m == nil {
			t.Fatalf("expected milestone for count %d, got nil", count)
		}
		if m.Icon == "" || m.Title == "" || m.Message == "" {
			t.Fatalf("milestone for %d has empty fields: %+v", count, m)
		}
	}
}

func TestMilestoneFor_OtherCounts(t *testing.T) {
	for _, count := range []int{0, 1, 2, 4, 6, 8, 13, 15, 20, 22, 29, 31, 100} {
		if m := MilestoneFor(count); m != nil {
			t.Fatalf("expected nil for count %d, got %+v", count, m)
		}
	}
}

func TestMilestoneFor_ReturnsCopy(t *testing.T) {
	a := MilestoneFor(7)
	a.Title = "mutated"
	if b := MilestoneFor(7); b.Title == "mutated" {
		t.Fatal("MilestoneFor must not expose the shared table")
	}
}
