package phylo

import (
	"math"
	"reflect"
	"testing"
)

func TestFaithPDHandComputed(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,(C:0.3,D:0.4):0.6);")

	cases := []struct {
		name   string
		leaves []string
		want   float64
	}{
		{"empty_subset", nil, 0},
		{"single_leaf", []string{"A"}, 0.15},
		{"sibling_pair", []string{"A", "B"}, 0.35},
		{"cross_root_pair", []string{"A", "C"}, 1.05},
		{"all_leaves", []string{"A", "B", "C", "D"}, 1.65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tree.FaithPD(tc.leaves)
			if err != nil {
				t.Fatalf("FaithPD(%v) failed: %v", tc.leaves, err)
			}
			if math.Abs(got-tc.want) > distTolerance {
				t.Errorf("FaithPD(%v) = %f, want %f", tc.leaves, got, tc.want)
			}
		})
	}
}

func TestFaithPDSharedBranchCountedOnce(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,C:0.3);")
	// A and B share the 0.05 branch; it must not be double counted.
	got, err := tree.FaithPD([]string{"A", "B"})
	if err != nil {
		t.Fatalf("FaithPD failed: %v", err)
	}
	if math.Abs(got-0.35) > distTolerance {
		t.Errorf("FaithPD = %f, want 0.35", got)
	}
}

func TestFaithPDUnknownLeaf(t *testing.T) {
	tree := mustParse(t, "(A:1,B:2);")
	if _, err := tree.FaithPD([]string{"A", "ghost"}); err == nil {
		t.Error("expected error for unknown leaf")
	}
}

func TestCladeCutSplitsDeepBranches(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,(C:0.3,D:0.4):0.6);")

	// At height 0.5 only the C/D ancestor branch has crossed; A and B
	// stay in the residual stratum near the root.
	got := tree.CladeCut(0.5)
	want := map[string]string{
		"A": "basal",
		"B": "basal",
		"C": "clade_01",
		"D": "clade_01",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CladeCut(0.5) = %v, want %v", got, want)
	}
}

func TestCladeCutLowHeightSeparatesEveryBranch(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,(C:0.3,D:0.4):0.6);")

	got := tree.CladeCut(0.1)
	want := map[string]string{
		"A": "clade_01",
		"B": "clade_02",
		"C": "clade_03",
		"D": "clade_03",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CladeCut(0.1) = %v, want %v", got, want)
	}
}

func TestCladeCutZeroHeightIsOneStratum(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,C:0.3);")
	got := tree.CladeCut(0)
	for leaf, label := range got {
		if label != "clade_01" {
			t.Errorf("leaf %s in %s, want clade_01", leaf, label)
		}
	}
	if len(got) != 3 {
		t.Errorf("labelled %d leaves, want 3", len(got))
	}
}

func TestStrataForLeavesAlignment(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,(C:0.3,D:0.4):0.6);")

	got, err := tree.StrataForLeaves([]string{"A", "C", "D", "B"}, 0.5)
	if err != nil {
		t.Fatalf("StrataForLeaves failed: %v", err)
	}
	want := []string{"basal", "clade_01", "clade_01", "basal"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("strata = %v, want %v", got, want)
	}

	if _, err := tree.StrataForLeaves([]string{"A", "nope"}, 0.5); err == nil {
		t.Error("expected error for unknown leaf")
	}
}
