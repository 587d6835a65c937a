package order

// Cycle describes a predecessor edge that was ignored during traversal
// because following it would have re-entered a node still being visited.
type Cycle struct {
	From string `json:"from" msgpack:"from"` // provider of the node being visited
	To   string `json:"to" msgpack:"to"`     // provider of the predecessor that closed the cycle
}

// Graph maps provider names to the nodes they produced.
type Graph[T any] struct {
	buckets map[string][]*Node[T]
	names   []string // first-encounter order of providers
	size    int
	cycles  []Cycle
}

// Build groups nodes by provider and derives predecessor edges from their
// declared constraints. Constraints naming providers absent from nodes are
// ignored.
func Build[T any](nodes []*Node[T]) *Graph[T] {
	g := &Graph[T]{
		buckets: make(map[string][]*Node[T]),
		names:   make([]string, 0, len(nodes)),
		size:    len(nodes),
	}
	for _, node := range nodes {
		if _, ok := g.buckets[node.Provider]; !ok {
			g.names = append(g.names, node.Provider)
		}
		g.buckets[node.Provider] = append(g.buckets[node.Provider], node)
	}

	for _, node := range nodes {
		// node runs before every node of the named provider
		for _, name := range node.Before {
			for _, other := range g.buckets[name] {
				other.addPredecessor(node)
			}
		}
		// node runs after every node of the named provider
		for _, name := range node.After {
			for _, other := range g.buckets[name] {
				node.addPredecessor(other)
			}
		}
	}
	return g
}

// Providers returns provider names in first-encounter order.
func (g *Graph[T]) Providers() []string {
	return g.names
}

// Nodes returns the bucket for provider.
func (g *Graph[T]) Nodes(provider string) []*Node[T] {
	return g.buckets[provider]
}

// Len returns the total number of nodes.
func (g *Graph[T]) Len() int {
	return g.size
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	done
)

// TopologicalSort emits every item once: buckets in first-encounter order,
// nodes within a bucket in encounter order, each preceded by its not yet
// emitted predecessors. The result is identical for identical input.
func (g *Graph[T]) TopologicalSort() []T {
	result := make([]T, 0, g.size)
	state := make(map[*Node[T]]visitState, g.size)
	g.cycles = g.cycles[:0]

	var visit func(n *Node[T])
	visit = func(n *Node[T]) {
		state[n] = visiting
		for _, p := range n.preds {
			switch state[p] {
			case unvisited:
				visit(p)
			case visiting:
				g.cycles = append(g.cycles, Cycle{From: n.Provider, To: p.Provider})
			}
		}
		state[n] = done
		result = append(result, n.Item)
	}

	for _, name := range g.names {
		for _, n := range g.buckets[name] {
			if state[n] == unvisited {
				visit(n)
			}
		}
	}
	return result
}

// Cycles returns the edges broken by the most recent TopologicalSort.
func (g *Graph[T]) Cycles() []Cycle {
	return g.cycles
}
