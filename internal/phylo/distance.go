package phylo

import (
	"fmt"
)

// PatristicDistance returns the sum of branch lengths along the path
// between two leaves.
func (t *Tree) PatristicDistance(a, b string) (float64, error) {
	na, ok := t.leaves[a]
	if !ok {
		return 0, fmt.Errorf("phylo: unknown leaf %q", a)
	}
	nb, ok := t.leaves[b]
	if !ok {
		return 0, fmt.Errorf("phylo: unknown leaf %q", b)
	}
	if na == nb {
		return 0, nil
	}
	anc := lowestCommonAncestor(na, nb)
	return na.depth + nb.depth - 2*anc.depth, nil
}

// DistanceMatrix returns the full symmetric patristic distance matrix with
// rows and columns in leaf order.
func (t *Tree) DistanceMatrix() ([]string, [][]float64) {
	labels := t.Leaves()
	matrix := make([][]float64, len(labels))
	for i := range matrix {
		matrix[i] = make([]float64, len(labels))
	}
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			// Lookup errors are impossible: labels come from the tree itself.
			d, _ := t.PatristicDistance(labels[i], labels[j])
			matrix[i][j] = d
			matrix[j][i] = d
		}
	}
	return labels, matrix
}

func lowestCommonAncestor(a, b *Node) *Node {
	seen := make(map[*Node]bool)
	for n := a; n != nil; n = n.parent {
		seen[n] = true
	}
	for n := b; n != nil; n = n.parent {
		if seen[n] {
			return n
		}
	}
	// Both chains end at the root, so this is unreachable for nodes of the
	// same tree.
	return nil
}
