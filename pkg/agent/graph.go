package agent

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownNode reports a neighbor query for a node the graph has never
// seen.
var ErrUnknownNode = errors.New("unknown graph node")

// Graph is a small undirected graph over symbol names. Self-loops are
// ignored.
type Graph struct {
	adjacency map[string]map[string]bool
}

func NewGraph() *Graph {
	return &Graph{adjacency: make(map[string]map[string]bool)}
}

func (g *Graph) AddNode(node string) {
	if g.adjacency[node] == nil {
		g.adjacency[node] = make(map[string]bool)
	}
}

func (g *Graph) AddEdge(a, b string) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adjacency[a][b] = true
	g.adjacency[b][a] = true
}

// Neighbors returns the sorted neighbors of node, or ErrUnknownNode for a
// node that was never added.
func (g *Graph) Neighbors(node string) ([]string, error) {
	adj, ok := g.adjacency[node]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (g *Graph) HasNode(node string) bool {
	_, ok := g.adjacency[node]
	return ok
}

func (g *Graph) NodeCount() int {
	return len(g.adjacency)
}

func (g *Graph) EdgeCount() int {
	total := 0
	for _, adj := range g.adjacency {
		total += len(adj)
	}
	return total / 2
}

// Edges lists every undirected edge exactly once, ordered pairs sorted
// lexically for stable output.
func (g *Graph) Edges() [][2]string {
	edges := make([][2]string, 0, g.EdgeCount())
	for a, adj := range g.adjacency {
		for b := range adj {
			if a < b {
				edges = append(edges, [2]string{a, b})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}
