package network

import (
	"sort"
)

// ============================================================================
// COMMUNITY DETECTION - Greedy modularity with deterministic tie-breaking
// ============================================================================

// louvainEdge connects two node indices with a non-negative weight.
// Association strength is what binds features into a module, so callers pass
// absolute effect sizes here even when edge weights are signed.
type louvainEdge struct {
	u, v   int
	weight float64
}

type weightedNeighbor struct {
	node   int
	weight float64
}

// maxLouvainPasses bounds the local-moving loop. Every accepted move
// strictly increases modularity, so the loop terminates on its own; the cap
// only guards against float pathologies.
const maxLouvainPasses = 128

// louvainPartition assigns every node a community by greedy modularity
// optimization: nodes start alone, then repeatedly move to the neighboring
// community with the largest modularity gain until nothing improves.
//
// Determinism is part of the contract. Nodes are visited in ascending index
// order, candidate communities are examined in order of their lowest member
// index, and equal gains keep the first (lowest-identifier) candidate, so
// identical inputs always produce identical partitions.
//
// Returned labels are contiguous starting at 1, numbered by each
// community's lowest member index.
func louvainPartition(n int, edges []louvainEdge) []int {
	if n == 0 {
		return nil
	}

	adj := make([][]weightedNeighbor, n)
	degree := make([]float64, n)
	total := 0.0 // sum of degrees = 2m
	for _, e := range edges {
		adj[e.u] = append(adj[e.u], weightedNeighbor{e.v, e.weight})
		adj[e.v] = append(adj[e.v], weightedNeighbor{e.u, e.weight})
		degree[e.u] += e.weight
		degree[e.v] += e.weight
		total += 2 * e.weight
	}

	comm := make([]int, n)
	if total == 0 {
		// Weightless graph: modularity cannot distinguish partitions, so
		// every node stands alone.
		for i := range comm {
			comm[i] = i
		}
		return relabelByLowestMember(comm)
	}

	commTot := make([]float64, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		comm[i] = i
		commTot[i] = degree[i]
		members[i] = []int{i}
	}

	lowestMember := func(c, fallback int) int {
		if len(members[c]) == 0 {
			return fallback
		}
		low := members[c][0]
		for _, v := range members[c] {
			if v < low {
				low = v
			}
		}
		return low
	}

	moved := true
	for pass := 0; moved && pass < maxLouvainPasses; pass++ {
		moved = false
		for i := 0; i < n; i++ {
			ci := comm[i]

			// Weight from i into each adjacent community.
			links := make(map[int]float64)
			for _, nb := range adj[i] {
				links[comm[nb.node]] += nb.weight
			}

			// Detach i before evaluating candidates so its own mass never
			// biases the comparison.
			commTot[ci] -= degree[i]
			detachMember(members, ci, i)

			candidates := make([]int, 0, len(links)+1)
			seen := map[int]bool{ci: true}
			candidates = append(candidates, ci)
			for c := range links {
				if !seen[c] {
					seen[c] = true
					candidates = append(candidates, c)
				}
			}
			sort.Slice(candidates, func(a, b int) bool {
				return lowestMember(candidates[a], i) < lowestMember(candidates[b], i)
			})

			// Gain of joining community C, up to constants shared by all
			// candidates: links(i,C) - k_i * tot(C) / 2m. Strict comparison
			// keeps the earliest candidate on ties.
			best := candidates[0]
			bestGain := links[best] - degree[i]*commTot[best]/total
			for _, c := range candidates[1:] {
				gain := links[c] - degree[i]*commTot[c]/total
				if gain > bestGain {
					best = c
					bestGain = gain
				}
			}

			if best != ci {
				moved = true
			}
			comm[i] = best
			commTot[best] += degree[i]
			members[best] = append(members[best], i)
		}
	}

	return relabelByLowestMember(comm)
}

// detachMember removes node i from a community's member list.
func detachMember(members [][]int, c, i int) {
	list := members[c]
	for idx, v := range list {
		if v == i {
			list[idx] = list[len(list)-1]
			members[c] = list[:len(list)-1]
			return
		}
	}
}

// relabelByLowestMember renumbers community labels contiguously from 1,
// ordered by each community's lowest node index.
func relabelByLowestMember(comm []int) []int {
	groups := make(map[int][]int)
	for i, c := range comm {
		groups[c] = append(groups[c], i)
	}

	lowest := make([]int, 0, len(groups))
	byLowest := make(map[int]int, len(groups))
	for c, nodes := range groups {
		low := nodes[0]
		for _, v := range nodes {
			if v < low {
				low = v
			}
		}
		lowest = append(lowest, low)
		byLowest[low] = c
	}
	sort.Ints(lowest)

	newID := make(map[int]int, len(groups))
	for rank, low := range lowest {
		newID[byLowest[low]] = rank + 1
	}

	labels := make([]int, len(comm))
	for i, c := range comm {
		labels[i] = newID[c]
	}
	return labels
}
