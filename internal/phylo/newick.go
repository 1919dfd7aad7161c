package phylo

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// NEWICK TREES - Parsing and structure
// ============================================================================

// Node is one vertex of a rooted phylogenetic tree. Length is the branch
// length to the parent; the root's length is 0. Leaves carry strain names,
// internal nodes may be unnamed.
type Node struct {
	Name     string
	Length   float64
	Children []*Node

	parent *Node
	depth  float64 // cumulative branch length from the root
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a parsed Newick tree with an index over its uniquely named leaves.
type Tree struct {
	Root   *Node
	leaves map[string]*Node
	order  []string // leaf names in tree (parse) order
}

// Leaves returns the leaf names in tree order.
func (t *Tree) Leaves() []string {
	return append([]string(nil), t.order...)
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int { return len(t.order) }

// ParseNewick parses a Newick tree string, e.g.
//
//	((strainA:0.1,strainB:0.2):0.05,strainC:0.3);
//
// Leaf names are required and must be unique; internal node names and branch
// lengths are optional (a missing length is 0). Single-quoted names may
// contain Newick punctuation. The trailing semicolon is optional.
func ParseNewick(s string) (*Tree, error) {
	p := &parser{input: s}
	p.skipSpace()
	root, err := p.parseSubtree()
	if err != nil {
		return nil, err
	}
	// A root branch has no parent; any length written on it is ignored.
	root.Length = 0
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ';' {
		p.pos++
		p.skipSpace()
	}
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("newick: trailing input at offset %d: %q", p.pos, p.rest())
	}

	t := &Tree{Root: root, leaves: make(map[string]*Node)}
	if err := t.index(root, nil, 0); err != nil {
		return nil, err
	}
	if len(t.order) == 0 {
		return nil, fmt.Errorf("newick: tree has no leaves")
	}
	return t, nil
}

// index walks the parsed structure, wiring parents, cumulative depths, and
// the leaf lookup.
func (t *Tree) index(n *Node, parent *Node, depth float64) error {
	n.parent = parent
	n.depth = depth + n.Length
	if n.IsLeaf() {
		if n.Name == "" {
			return fmt.Errorf("newick: unnamed leaf")
		}
		if _, dup := t.leaves[n.Name]; dup {
			return fmt.Errorf("newick: duplicate leaf name %q", n.Name)
		}
		t.leaves[n.Name] = n
		t.order = append(t.order, n.Name)
		return nil
	}
	for _, c := range n.Children {
		if err := t.index(c, n, n.depth); err != nil {
			return err
		}
	}
	return nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) rest() string {
	r := p.input[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// parseSubtree parses either an internal group "(...)name:len" or a leaf
// "name:len".
func (p *parser) parseSubtree() (*Node, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("newick: unexpected end of input")
	}

	n := &Node{}
	if p.input[p.pos] == '(' {
		p.pos++
		for {
			child, err := p.parseSubtree()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			p.skipSpace()
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("newick: unclosed group")
			}
			if p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.input[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("newick: expected ',' or ')' at offset %d: %q", p.pos, p.rest())
		}
	}

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	n.Name = name

	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		length, err := p.parseLength()
		if err != nil {
			return nil, err
		}
		n.Length = length
	}
	return n, nil
}

// parseName reads an optional node label: either single-quoted or a bare
// token running to the next structural character.
func (p *parser) parseName() (string, error) {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '\'' {
		end := strings.IndexByte(p.input[p.pos+1:], '\'')
		if end < 0 {
			return "", fmt.Errorf("newick: unterminated quoted name at offset %d", p.pos)
		}
		name := p.input[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return name, nil
	}
	start := p.pos
	for p.pos < len(p.input) && !isStructural(p.input[p.pos]) {
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos]), nil
}

func (p *parser) parseLength() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && !isStructural(p.input[p.pos]) {
		p.pos++
	}
	raw := strings.TrimSpace(p.input[start:p.pos])
	if raw == "" {
		return 0, fmt.Errorf("newick: missing branch length after ':' at offset %d", start)
	}
	length, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("newick: bad branch length %q at offset %d", raw, start)
	}
	if length < 0 {
		return 0, fmt.Errorf("newick: negative branch length %v at offset %d", length, start)
	}
	return length, nil
}

func isStructural(c byte) bool {
	switch c {
	case '(', ')', ',', ':', ';':
		return true
	}
	return false
}
