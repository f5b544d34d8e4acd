package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// dependencyGraph maps a node to the nodes it depends on.
type dependencyGraph map[string][]string

// buildOrder returns nodes so that every node follows its dependencies.
// Independent nodes keep their relative order from nodes, which keeps
// operator IDs stable across loads. A dependency cycle is an error.
func buildOrder(nodes []string, graph dependencyGraph) ([]string, error) {
	sccs := tarjanSCC(nodes, graph)

	// Components arrive dependencies first. Any component that is not a
	// single node without a self-edge is a cycle.
	order := make([]string, 0, len(nodes))
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			// Members were popped off the stack; restore discovery order so
			// the reported path starts at the operator seen first.
			slices.Reverse(scc)
			path := reconstructCyclePath(scc, graph)
			return nil, fmt.Errorf("dependency cycle: %s", strings.Join(path, " -> "))
		}
		order = append(order, scc[0])
	}
	return order, nil
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Components are emitted in reverse topological order of the dependency
// edges: a component comes after every component it depends on.
func tarjanSCC(nodes []string, graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Give v the next discovery index and push it.
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Walk v's dependencies.
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				// Unvisited: recurse, then inherit its lowest reachable index.
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Still on the stack, so w belongs to the component in progress.
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v roots a component: everything above it on the stack is a member.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Start from each unvisited node in declaration order so the result
	// does not depend on map iteration.
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath follows edges inside an SCC from its first member
// until it returns to the start.
//
// At each step it takes the first dependency that stays inside the SCC and
// is either unvisited or the start node. A self-loop yields [a, a].
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		// Pick the next in-component hop; closing the loop is always allowed.
		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			// Dead end inside the SCC; report the partial path.
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
