package phylo

import (
	"fmt"
)

// FaithPD returns Faith's phylogenetic diversity of a leaf subset: the sum
// of branch lengths of the minimal subtree connecting the leaves and the
// root (the rooted convention, so a single leaf contributes its full
// root-to-leaf path).
func (t *Tree) FaithPD(leaves []string) (float64, error) {
	if len(leaves) == 0 {
		return 0, nil
	}
	marked := make(map[*Node]bool)
	for _, name := range leaves {
		n, ok := t.leaves[name]
		if !ok {
			return 0, fmt.Errorf("phylo: unknown leaf %q", name)
		}
		for v := n; v != nil && !marked[v]; v = v.parent {
			marked[v] = true
		}
	}

	// Summed in tree order so the float result never depends on map
	// iteration.
	pd := 0.0
	var walk func(n *Node)
	walk = func(n *Node) {
		if marked[n] {
			pd += n.Length
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return pd, nil
}

// CladeCut groups leaves by cutting every branch that crosses the given
// depth from the root. Each subtree hanging below a cut branch becomes one
// stratum, labeled clade_NN in tree order; leaves that sit closer to the
// root than the cut stay connected to it and share the basal stratum.
func (t *Tree) CladeCut(height float64) map[string]string {
	labels := make(map[string]string, len(t.order))
	k := 0
	var walk func(n *Node, label string)
	walk = func(n *Node, label string) {
		if label == "" && n.depth >= height {
			k++
			label = fmt.Sprintf("clade_%02d", k)
		}
		if n.IsLeaf() {
			if label == "" {
				label = "basal"
			}
			labels[n.Name] = label
			return
		}
		for _, c := range n.Children {
			walk(c, label)
		}
	}
	walk(t.Root, "")
	return labels
}

// StrataForLeaves returns clade-cut labels aligned with the given leaf
// order, ready to pass as bootstrap strata.
func (t *Tree) StrataForLeaves(leaves []string, height float64) ([]string, error) {
	labels := t.CladeCut(height)
	out := make([]string, len(leaves))
	for i, name := range leaves {
		l, ok := labels[name]
		if !ok {
			return nil, fmt.Errorf("phylo: leaf %q not in tree", name)
		}
		out[i] = l
	}
	return out, nil
}
