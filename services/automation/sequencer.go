package automation

import "sort"

// Sequence computes a dependency-respecting execution order for the graph
// using Kahn's algorithm: for every connection u->v, u appears strictly
// before v in the returned order. Ties between simultaneously-ready nodes
// are broken by declaration order, so identical graphs always sequence
// identically.
//
// The graph is validated first: duplicate node ids and connections to
// nonexistent nodes are reported as a *GraphError before any ordering is
// attempted. If the order comes up short the leftover nodes form one or
// more cycles, reported in declaration order.
func Sequence(g *Graph) ([]string, error) {
	position := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, seen := position[n.ID]; seen {
			return nil, duplicateError(n.ID)
		}
		position[n.ID] = i
	}

	// In-degree counts distinct predecessors: a node listing the same
	// successor twice contributes a single edge.
	inDegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		seen := make(map[string]bool, len(n.Connections))
		for _, target := range n.Connections {
			if _, ok := position[target]; !ok {
				return nil, danglingError(n.ID, target)
			}
			if seen[target] {
				continue
			}
			seen[target] = true
			inDegree[target]++
			successors[n.ID] = append(successors[n.ID], target)
		}
	}

	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var ready []string
		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			return position[ready[i]] < position[ready[j]]
		})
		queue = append(queue, ready...)
	}

	if len(order) < len(g.Nodes) {
		ordered := make(map[string]bool, len(order))
		for _, id := range order {
			ordered[id] = true
		}
		var leftover []string
		for _, n := range g.Nodes {
			if !ordered[n.ID] {
				leftover = append(leftover, n.ID)
			}
		}
		return nil, cycleError(leftover)
	}

	return order, nil
}

// predecessors returns the nodes whose connection lists name the given id,
// in graph-declaration order.
func predecessors(g *Graph, id string) []Node {
	var preds []Node
	for _, n := range g.Nodes {
		for _, target := range n.Connections {
			if target == id {
				preds = append(preds, n)
				break
			}
		}
	}
	return preds
}
