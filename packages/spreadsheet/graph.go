package spreadsheet

import (
	"slices"
)

// DependencyNode represents a formula cell or a cell read by one
type DependencyNode struct {
	Coordinate Coordinate

	// cell-to-cell dependencies
	Precedents map[Coordinate]*DependencyNode // cells this cell reads
	Dependents map[Coordinate]*DependencyNode // cells that read this cell
}

// DependencyGraph is a point-in-time snapshot of the reference structure
// of a table. evaluation never consults it; it exists for introspection
// and is stale as soon as the table is edited.
type DependencyGraph struct {
	nodes map[Coordinate]*DependencyNode
}

// NewDependencyGraph creates an empty dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[Coordinate]*DependencyNode),
	}
}

// DependencyGraph scans every formula cell of the table and returns the
// resulting graph. the first malformed reference fails the scan.
func (t *Table) DependencyGraph() (*DependencyGraph, error) {
	dg := NewDependencyGraph()
	for coord, value := range t.cells {
		if !value.IsFormula() {
			continue
		}
		precedents, err := t.CellPrecedents(coord)
		if err != nil {
			return nil, err
		}
		dg.GetOrCreateNode(coord)
		for _, p := range precedents {
			dg.AddDependency(coord, p)
		}
	}
	t.logger.Debug("built dependency graph", "nodes", dg.NodeCount())
	return dg, nil
}

// GetOrCreateNode gets an existing node or creates a new one
func (dg *DependencyGraph) GetOrCreateNode(coord Coordinate) *DependencyNode {
	if node, exists := dg.nodes[coord]; exists {
		return node
	}

	node := &DependencyNode{
		Coordinate: coord,
		Precedents: make(map[Coordinate]*DependencyNode),
		Dependents: make(map[Coordinate]*DependencyNode),
	}
	dg.nodes[coord] = node
	return node
}

// GetNode retrieves a node if it exists
func (dg *DependencyGraph) GetNode(coord Coordinate) (*DependencyNode, bool) {
	node, exists := dg.nodes[coord]
	return node, exists
}

// AddDependency records that from reads to
func (dg *DependencyGraph) AddDependency(from, to Coordinate) {
	fromNode := dg.GetOrCreateNode(from)
	toNode := dg.GetOrCreateNode(to)

	fromNode.Precedents[to] = toNode
	toNode.Dependents[from] = fromNode
}

// GetDirectDependents returns cells directly reading this cell, ordered
// by row then column
func (dg *DependencyGraph) GetDirectDependents(coord Coordinate) []Coordinate {
	node, exists := dg.nodes[coord]
	if !exists {
		return nil
	}
	return sortedKeys(node.Dependents)
}

// GetAllDependents returns all cells affected by this cell (transitive
// closure), ordered by row then column
func (dg *DependencyGraph) GetAllDependents(coord Coordinate) []Coordinate {
	visited := make(map[Coordinate]struct{})
	var result []Coordinate

	dg.collectDependents(coord, visited, &result)
	slices.SortFunc(result, compareCoordinates)
	return result
}

// collectDependents recursively collects all dependents
func (dg *DependencyGraph) collectDependents(coord Coordinate, visited map[Coordinate]struct{}, result *[]Coordinate) {
	if _, alreadyVisited := visited[coord]; alreadyVisited {
		return
	}
	visited[coord] = struct{}{}

	node, exists := dg.nodes[coord]
	if !exists {
		return
	}

	for dependent := range node.Dependents {
		if _, alreadyVisited := visited[dependent]; !alreadyVisited {
			*result = append(*result, dependent)
			dg.collectDependents(dependent, visited, result)
		}
	}
}

// GetDirectPrecedents returns cells this cell directly reads
func (dg *DependencyGraph) GetDirectPrecedents(coord Coordinate) []Coordinate {
	node, exists := dg.nodes[coord]
	if !exists {
		return nil
	}
	return sortedKeys(node.Precedents)
}

// GetCalculationOrder returns every node with precedents before the
// cells that read them. the second result reports whether a cycle was
// found; cells on a cycle are still listed.
func (dg *DependencyGraph) GetCalculationOrder() ([]Coordinate, bool) {
	// three states: unvisited (not in map), visiting (false), visited (true)
	state := make(map[Coordinate]bool)
	var order []Coordinate
	hasCycle := false

	var visit func(coord Coordinate)
	visit = func(coord Coordinate) {
		if completed, exists := state[coord]; exists {
			if !completed {
				// currently visiting - cycle detected
				hasCycle = true
			}
			return
		}

		// mark as visiting
		state[coord] = false

		if node, exists := dg.nodes[coord]; exists {
			for _, precedent := range sortedKeys(node.Precedents) {
				visit(precedent)
			}
		}

		// mark as visited
		state[coord] = true
		order = append(order, coord)
	}

	// visit in a stable order so the result is deterministic
	for _, coord := range sortedKeys(dg.nodes) {
		visit(coord)
	}

	return order, hasCycle
}

// HasCycle checks if there are circular dependencies
func (dg *DependencyGraph) HasCycle() bool {
	_, hasCycle := dg.GetCalculationOrder()
	return hasCycle
}

// NodeCount returns the number of nodes in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

func sortedKeys[V any](m map[Coordinate]V) []Coordinate {
	keys := make([]Coordinate, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareCoordinates)
	return keys
}

// compareCoordinates orders by row, then column
func compareCoordinates(a, b Coordinate) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
