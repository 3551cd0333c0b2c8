package internal

import "golang.org/x/exp/maps"

// cellHost is the subset of Sheet a Cell needs to rewire its edges: it
// must be able to fetch an existing cell and to lazily materialise an
// Empty placeholder for a referenced position that has no cell yet.
// Keeping this as a narrow interface (rather than a direct *Sheet
// pointer) keeps the owning/non-owning split explicit: Sheet owns Cells,
// Cells only reach back through this interface.
type cellHost interface {
	cellAt(Position) (*Cell, bool)
	ensureCellAt(Position) (*Cell, error)
	resolve(Position) (float64, error)
}

// Cell is a node in the sheet's dependency graph. The sheet exclusively
// owns every Cell; sources/dependents are non-owning references to peer
// cells via position-keyed edges.
type Cell struct {
	pos  Position
	host cellHost

	behavior behavior

	// sources are positions this cell's current behavior reads.
	sources map[Position]*Cell
	// dependents are cells whose current behavior reads this cell.
	dependents map[Position]*Cell
}

// newCell creates an Empty cell at pos, owned by host.
func newCell(pos Position, host cellHost) *Cell {
	return &Cell{
		pos:        pos,
		host:       host,
		behavior:   emptyBehavior{},
		sources:    make(map[Position]*Cell),
		dependents: make(map[Position]*Cell),
	}
}

// GetValue returns the cell's current value, lazily evaluating and
// memoising a Formula behavior's result if necessary.
func (c *Cell) GetValue() any {
	return c.behavior.GetValue(c.host.resolve)
}

// GetText returns the cell's verbatim text.
func (c *Cell) GetText() string {
	return c.behavior.GetText()
}

// GetReferencedCells returns the sorted, deduplicated positions this
// cell's formula references (nil for Empty/Text).
func (c *Cell) GetReferencedCells() []Position {
	return c.behavior.GetReferencedCells()
}

// IsReferenced reports whether any other cell currently depends on this
// one.
func (c *Cell) IsReferenced() bool {
	return len(c.dependents) > 0
}

// Set parses text into a new behavior, cycle-checks its references
// against the existing graph, and only on success swaps the behavior
// in, rewires edges, and invalidates downstream caches. Any failure
// leaves the cell completely unchanged.
func (c *Cell) Set(text string) error {
	if text == c.GetText() {
		return nil // idempotent; must not touch cache or graph
	}

	newBeh, err := newBehavior(text)
	if err != nil {
		return err
	}
	newRefs := newBeh.GetReferencedCells()

	if c.wouldCycle(newRefs) {
		return &CircularDependencyError{At: c.pos}
	}

	// commit: swap behavior, then rewire edges. Edge rewiring can fail
	// only by construction error, which cannot happen here since
	// ensureCellAt always succeeds for valid positions (the grid always
	// has room - Sheet grows it before calling Set), so there is no
	// rollback path past this point.
	c.behavior = newBeh
	c.rewireEdges(newRefs)
	c.invalidateDownstream()
	return nil
}

// wouldCycle reports whether adopting newRefs as this cell's sources
// would create a cycle: a breadth-first search over the transitive
// closure of sources reachable from newRefs, looking for c itself.
func (c *Cell) wouldCycle(newRefs []Position) bool {
	visited := make(map[*Cell]bool)
	var queue []*Cell
	for _, p := range newRefs {
		cell, ok := c.host.cellAt(p)
		if !ok {
			continue // no existing cell here; cannot reach anything
		}
		if cell == c {
			return true
		}
		queue = append(queue, cell)
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if visited[curr] {
			continue
		}
		visited[curr] = true
		if curr == c {
			return true
		}
		for src := range curr.sources {
			if cell, ok := c.host.cellAt(src); ok && !visited[cell] {
				queue = append(queue, cell)
			}
		}
	}
	return false
}

// rewireEdges detaches from all old sources, then attaches to every
// position in newRefs, materialising Empty placeholders for references
// that don't exist yet.
func (c *Cell) rewireEdges(newRefs []Position) {
	for _, src := range c.sources {
		delete(src.dependents, c.pos)
	}
	maps.Clear(c.sources)

	for _, p := range newRefs {
		cell, err := c.host.ensureCellAt(p)
		if err != nil || cell == c {
			continue
		}
		c.sources[p] = cell
		cell.dependents[c.pos] = c
	}
}

// invalidateDownstream walks a depth-first search from c over dependent
// edges, invalidating each visited node's cache exactly once. c itself is
// included since its own behavior just changed.
func (c *Cell) invalidateDownstream() {
	visited := make(map[*Cell]bool)
	var stack = []*Cell{c}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[curr] {
			continue
		}
		visited[curr] = true
		curr.behavior.InvalidateCache()
		for _, dep := range curr.dependents {
			if !visited[dep] {
				stack = append(stack, dep)
			}
		}
	}
}

// Clear is equivalent to Set(""), plus a defensive second detach from
// any remaining sources and a second downstream invalidation, since
// value semantics changed to 0.0/empty regardless of what Set("")
// already did.
func (c *Cell) Clear() error {
	if err := c.Set(""); err != nil {
		return err
	}
	for _, src := range c.sources {
		delete(src.dependents, c.pos)
	}
	maps.Clear(c.sources)
	c.invalidateDownstream()
	return nil
}
