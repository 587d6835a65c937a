package order

import "strings"

// Constraint is one ordering declaration attached to a provider. Exactly one
// of Before / After is usually set; empty names are ignored.
type Constraint struct {
	Before string // the declaring provider runs before this provider
	After  string // the declaring provider runs after this provider
}

// Node wraps one item with the ordering metadata of the provider that
// produced it.
type Node[T any] struct {
	Item     T
	Provider string
	Before   []string
	After    []string

	preds   []*Node[T]
	predSet map[*Node[T]]struct{}
}

// NewNode creates a node for item produced by provider, applying constraints.
func NewNode[T any](item T, provider string, constraints ...Constraint) *Node[T] {
	n := &Node[T]{Item: item, Provider: provider}
	for _, c := range constraints {
		n.AddConstraint(c)
	}
	return n
}

// AddConstraint records the non-empty halves of c.
func (n *Node[T]) AddConstraint(c Constraint) {
	if name := strings.TrimSpace(c.Before); name != "" {
		n.Before = append(n.Before, name)
	}
	if name := strings.TrimSpace(c.After); name != "" {
		n.After = append(n.After, name)
	}
}

// Predecessors returns the nodes that must be emitted before n, in the order
// the edges were derived.
func (n *Node[T]) Predecessors() []*Node[T] {
	return n.preds
}

func (n *Node[T]) addPredecessor(p *Node[T]) {
	if p == n {
		return
	}
	if n.predSet == nil {
		n.predSet = make(map[*Node[T]]struct{})
	}
	if _, ok := n.predSet[p]; ok {
		return
	}
	n.predSet[p] = struct{}{}
	n.preds = append(n.preds, p)
}
