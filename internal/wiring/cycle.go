package wiring

import (
	"fmt"
	"sort"
	"strings"
)

// CycleWarning reports abilities that can re-enter each other through
// triggers. Cycles are legal (a counter that re-arms itself) but recurse
// until the dispatch depth limit stops them, so they are surfaced.
type CycleWarning struct {
	Path    []uint32 `json:"path"`
	Message string   `json:"message"`
}

// abilityGraph maps ability id → abilities its outputs can reach.
type abilityGraph map[uint32][]uint32

// AnalyzeCycles finds strongly connected components of the ability graph.
// Results are ordered by their smallest ability id.
func AnalyzeCycles(f *File) []CycleWarning {
	graph, names := buildGraph(f)
	sccs := tarjanSCC(graph)

	var warnings []CycleWarning
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			path := cyclePath(scc, graph)
			labels := make([]string, len(path))
			for i, id := range path {
				labels[i] = fmt.Sprintf("%s(%d)", names[id], id)
			}
			warnings = append(warnings, CycleWarning{
				Path:    path,
				Message: "trigger cycle: " + strings.Join(labels, " -> "),
			})
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return minID(warnings[i].Path) < minID(warnings[j].Path)
	})
	return warnings
}

func buildGraph(f *File) (abilityGraph, map[uint32]string) {
	targets := make(map[uint32][]uint32, len(f.Triggers))
	for _, t := range f.Triggers {
		targets[t.ID] = t.Targets
	}

	graph := make(abilityGraph, len(f.Abilities))
	names := make(map[uint32]string, len(f.Abilities))
	for _, a := range f.Abilities {
		names[a.ID] = a.Name
		outs := append([]uint32(nil), a.Triggers...)
		if a.Kind == KindCompare {
			for _, id := range []uint32{a.OnTrue, a.OnFalse} {
				if id != 0 {
					outs = append(outs, id)
				}
			}
		}
		edges := []uint32{}
		for _, trig := range outs {
			edges = append(edges, targets[trig]...)
		}
		graph[a.ID] = edges
	}
	return graph, names
}

func hasSelfLoop(node uint32, graph abilityGraph) bool {
	for _, n := range graph[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components of graph. Nodes are
// visited in ascending id order so the output is stable.
func tarjanSCC(graph abilityGraph) [][]uint32 {
	var (
		index   = 0
		stack   []uint32
		indices = make(map[uint32]int)
		lowlink = make(map[uint32]int)
		onStack = make(map[uint32]bool)
		sccs    [][]uint32
	)

	var strongConnect func(uint32)
	strongConnect = func(v uint32) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []uint32
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]uint32, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	for _, n := range nodes {
		if _, seen := indices[n]; !seen {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath walks from the smallest member of scc back to itself, staying
// inside the component.
func cyclePath(scc []uint32, graph abilityGraph) []uint32 {
	members := make(map[uint32]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := scc[0]
	current := start
	path := []uint32{start}
	visited := map[uint32]bool{}
	for {
		visited[current] = true
		next, found := uint32(0), false
		for _, n := range graph[current] {
			if members[n] && (!visited[n] || n == start) {
				next, found = n, true
				break
			}
		}
		if !found {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		current = next
	}
}

func minID(path []uint32) uint32 {
	m := path[0]
	for _, id := range path[1:] {
		if id < m {
			m = id
		}
	}
	return m
}
