package phylo

import (
	"reflect"
	"testing"
)

func mustParse(t *testing.T, s string) *Tree {
	t.Helper()
	tree, err := ParseNewick(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return tree
}

func TestParseNewickBasicTopology(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2):0.05,(C:0.3,D:0.4):0.6);")

	if got := tree.Leaves(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("leaves = %v, want [A B C D]", got)
	}
	if tree.LeafCount() != 4 {
		t.Errorf("leaf count = %d, want 4", tree.LeafCount())
	}
	if len(tree.Root.Children) != 2 {
		t.Errorf("root children = %d, want 2", len(tree.Root.Children))
	}
	left := tree.Root.Children[0]
	if left.Length != 0.05 || len(left.Children) != 2 {
		t.Errorf("left internal node wrong: length %f, %d children", left.Length, len(left.Children))
	}
}

func TestParseNewickNamedInternals(t *testing.T) {
	tree := mustParse(t, "((A:0.1,B:0.2)AB:0.05,C:0.3)root;")
	if tree.Root.Name != "root" {
		t.Errorf("root name = %q, want root", tree.Root.Name)
	}
	if tree.Root.Children[0].Name != "AB" {
		t.Errorf("internal name = %q, want AB", tree.Root.Children[0].Name)
	}
}

func TestParseNewickToleratesMissingPieces(t *testing.T) {
	// No branch lengths, no internal names, no trailing semicolon,
	// whitespace sprinkled in.
	tree := mustParse(t, " ( A , ( B ,\n C ) ) ")
	if got := tree.Leaves(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("leaves = %v, want [A B C]", got)
	}
	d, err := tree.PatristicDistance("A", "C")
	if err != nil {
		t.Fatalf("distance failed: %v", err)
	}
	if d != 0 {
		t.Errorf("lengthless tree distance = %f, want 0", d)
	}
}

func TestParseNewickQuotedNames(t *testing.T) {
	tree := mustParse(t, "('strain one':0.1,'strain,two':0.2);")
	if got := tree.Leaves(); !reflect.DeepEqual(got, []string{"strain one", "strain,two"}) {
		t.Errorf("leaves = %v", got)
	}
}

func TestParseNewickSingleLeaf(t *testing.T) {
	tree := mustParse(t, "A:1.5;")
	if tree.LeafCount() != 1 {
		t.Fatalf("leaf count = %d, want 1", tree.LeafCount())
	}
	d, err := tree.PatristicDistance("A", "A")
	if err != nil || d != 0 {
		t.Errorf("self distance = %f err %v, want 0", d, err)
	}
}

func TestParseNewickIgnoresRootLength(t *testing.T) {
	tree := mustParse(t, "(A:1,B:2):5;")
	pd, err := tree.FaithPD([]string{"A"})
	if err != nil {
		t.Fatalf("FaithPD failed: %v", err)
	}
	if pd != 1 {
		t.Errorf("single-leaf diversity = %f, want 1 (root length must not count)", pd)
	}
}

func TestParseNewickRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unclosed_group", "((A,B);"},
		{"trailing_garbage", "(A,B); extra"},
		{"duplicate_leaf", "(A,A);"},
		{"unnamed_leaf", "(A,);"},
		{"negative_length", "(A:-1,B:1);"},
		{"bad_length", "(A:abc,B:1);"},
		{"unterminated_quote", "('A,B:1);"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseNewick(tc.input); err == nil {
				t.Errorf("expected parse error for %q", tc.input)
			}
		})
	}
}
