package spreadsheet

import "strings"

// evalContext tracks the cells currently being evaluated along one
// depth-first evaluation path. each top-level evaluation gets its own, so
// two evaluations never share a guard.
type evalContext struct {
	items    []Coordinate            // active path, outermost first
	visiting map[Coordinate]struct{} // cells on the active path (cycle detection)
	maxDepth int
}

// newEvalContext creates an empty evaluation context
func newEvalContext(maxDepth int) *evalContext {
	return &evalContext{
		items:    make([]Coordinate, 0, 8),
		visiting: make(map[Coordinate]struct{}),
		maxDepth: maxDepth,
	}
}

// push adds a cell to the active path. a cell already on the path is a
// circular reference.
func (ec *evalContext) push(coord Coordinate) error {
	if ec.isVisiting(coord) {
		return newError(CodeCircularReference, "Circular reference detected at cell %s (path %s)", coord, ec.describe(coord))
	}
	if ec.maxDepth > 0 && len(ec.items) >= ec.maxDepth {
		return newError(CodeDepthExceeded, "Maximum evaluation depth of %d exceeded at cell %s", ec.maxDepth, coord)
	}
	ec.items = append(ec.items, coord)
	ec.visiting[coord] = struct{}{}
	return nil
}

// pop removes and returns the innermost cell of the active path
func (ec *evalContext) pop() (Coordinate, bool) {
	if len(ec.items) == 0 {
		return Coordinate{}, false
	}
	coord := ec.items[len(ec.items)-1]
	ec.items = ec.items[:len(ec.items)-1]
	delete(ec.visiting, coord)
	return coord, true
}

// isVisiting checks if a cell is on the active path
func (ec *evalContext) isVisiting(coord Coordinate) bool {
	_, exists := ec.visiting[coord]
	return exists
}

// depth returns the length of the active path
func (ec *evalContext) depth() int {
	return len(ec.items)
}

// describe renders the cycle that closes at coord, e.g. "A1 -> B1 -> A1"
func (ec *evalContext) describe(coord Coordinate) string {
	parts := make([]string, 0, len(ec.items)+1)
	started := false
	for _, item := range ec.items {
		if item == coord {
			started = true
		}
		if started {
			parts = append(parts, item.String())
		}
	}
	parts = append(parts, coord.String())
	return strings.Join(parts, " -> ")
}
