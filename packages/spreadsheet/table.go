package spreadsheet

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxDepth caps the length of a reference chain during one
// evaluation
const DefaultMaxDepth = 256

// TableId identifies a table
type TableId uuid.UUID

// NewTableId returns a random table id
func NewTableId() TableId {
	return TableId(uuid.New())
}

// ParseTableId parses the canonical UUID text form
func ParseTableId(s string) (TableId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TableId{}, fmt.Errorf("invalid table id %q: %w", s, err)
	}
	return TableId(id), nil
}

func (id TableId) String() string {
	return uuid.UUID(id).String()
}

// Table is a sparse store of cells with on-demand formula evaluation.
// nothing is cached: every read recomputes. a Table is not safe for
// concurrent use; callers serialize access.
type Table struct {
	id        TableId
	name      string
	cells     map[Coordinate]DataValue
	functions Functions
	maxDepth  int
	logger    *slog.Logger
}

// TableOption configures a Table
type TableOption func(*Table)

// WithMaxDepth sets the recursion-depth cap. values below 1 are ignored.
func WithMaxDepth(n int) TableOption {
	return func(t *Table) {
		if n > 0 {
			t.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for evaluation and edit events
func WithLogger(l *slog.Logger) TableOption {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithFunctions replaces the function dispatcher
func WithFunctions(f Functions) TableOption {
	return func(t *Table) {
		if f != nil {
			t.functions = f
		}
	}
}

// NewTable creates an empty table. the name is trimmed and must not be
// blank.
func NewTable(id TableId, name string, opts ...TableOption) (*Table, error) {
	t := &Table{
		id:        id,
		cells:     make(map[Coordinate]DataValue),
		functions: NewDefaultBuiltInFunctions(),
		maxDepth:  DefaultMaxDepth,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := t.SetName(name); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ID returns the table id
func (t *Table) ID() TableId {
	return t.id
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// SetName renames the table
func (t *Table) SetName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newError(CodeInvalidTableName, "Invalid table name: '%s'. Table name cannot be empty or whitespace", name)
	}
	t.name = trimmed
	return nil
}

// SetCell stores value at coord, replacing whatever was there
func (t *Table) SetCell(coord Coordinate, value DataValue) {
	t.cells[coord] = value
}

// ClearCell removes the value at coord
func (t *Table) ClearCell(coord Coordinate) {
	delete(t.cells, coord)
}

// GetCell returns the raw stored value without evaluating it. a missing
// cell is empty text.
func (t *Table) GetCell(coord Coordinate) DataValue {
	if v, ok := t.cells[coord]; ok {
		return v
	}
	return Empty
}

// Len returns the number of stored cells
func (t *Table) Len() int {
	return len(t.cells)
}

// Cell is a coordinate and its stored value
type Cell struct {
	Coordinate Coordinate
	Value      DataValue
}

// Cells returns a snapshot of the stored cells, ordered by row then
// column
func (t *Table) Cells() []Cell {
	cells := make([]Cell, 0, len(t.cells))
	for coord, v := range t.cells {
		cells = append(cells, Cell{Coordinate: coord, Value: v})
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		return compareCoordinates(a.Coordinate, b.Coordinate)
	})
	return cells
}

// Bounds returns the highest row and column holding a value. ok is false
// for an empty table.
func (t *Table) Bounds() (maxRow RowId, maxColumn ColumnId, ok bool) {
	for coord := range t.cells {
		if !ok || coord.Row > maxRow {
			maxRow = coord.Row
		}
		if !ok || coord.Column > maxColumn {
			maxColumn = coord.Column
		}
		ok = true
	}
	return maxRow, maxColumn, ok
}

// Evaluation is the result of evaluating one cell. a classified failure
// is returned as an error instead; Fault only ever holds an unclassified
// failure, which display-oriented callers render as "#ERROR: <message>".
type Evaluation struct {
	Coordinate Coordinate
	Value      DataValue
	Fault      error
}

// Failed reports whether the evaluation degraded to a fault
func (e Evaluation) Failed() bool {
	return e.Fault != nil
}

// Display returns the value, or the "#ERROR: <message>" text for a fault
func (e Evaluation) Display() DataValue {
	if e.Fault != nil {
		return NewText("#ERROR: " + e.Fault.Error())
	}
	return e.Value
}

// Evaluate computes the value at coord. named engine errors are returned
// as errors from any depth; only unclassified failures (including panics
// raised while evaluating) are captured in the Fault of the result.
func (t *Table) Evaluate(coord Coordinate) (Evaluation, error) {
	return t.evaluate(coord, func(e *evaluator) (DataValue, error) {
		return e.Resolve(coord)
	})
}

// EvaluateFormula evaluates formula text as if it were stored in a cell.
// formula may carry its leading '='.
func (t *Table) EvaluateFormula(formula string) (Evaluation, error) {
	body := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	return t.evaluate(Coordinate{}, func(e *evaluator) (DataValue, error) {
		return e.Evaluate(body)
	})
}

// evaluate is the outermost per-cell evaluation. it is the only place
// unclassified failures are turned into a fault.
func (t *Table) evaluate(coord Coordinate, run func(*evaluator) (DataValue, error)) (result Evaluation, err error) {
	e := &evaluator{table: t, ctx: newEvalContext(t.maxDepth)}
	result.Coordinate = coord

	defer func() {
		if r := recover(); r != nil {
			result.Value = Empty
			result.Fault = fmt.Errorf("%v", r)
			err = nil
			t.logger.Warn("evaluation panicked", "cell", coord.String(), "panic", r)
		}
	}()

	v, runErr := run(e)
	switch {
	case runErr == nil:
		result.Value = v
		return result, nil
	case IsClassified(runErr):
		return Evaluation{}, runErr
	default:
		t.logger.Warn("evaluation degraded to an error value", "cell", coord.String(), "error", runErr)
		result.Value = Empty
		result.Fault = runErr
		return result, nil
	}
}

// GetValue evaluates the cell at coord for display: an unclassified
// failure becomes the text "#ERROR: <message>". named engine errors are
// returned.
func (t *Table) GetValue(coord Coordinate) (DataValue, error) {
	ev, err := t.Evaluate(coord)
	if err != nil {
		return Empty, err
	}
	return ev.Display(), nil
}

// GetValueStrict evaluates the cell at coord and returns every failure,
// classified or not, as an error
func (t *Table) GetValueStrict(coord Coordinate) (DataValue, error) {
	ev, err := t.Evaluate(coord)
	if err != nil {
		return Empty, err
	}
	if ev.Fault != nil {
		return Empty, ev.Fault
	}
	return ev.Value, nil
}

// resolve evaluates the stored cell at coord. coord stays on the
// visiting path for the duration and is popped on every exit.
func (t *Table) resolve(e *evaluator, coord Coordinate) (DataValue, error) {
	if err := e.ctx.push(coord); err != nil {
		return Empty, err
	}
	defer e.ctx.pop()

	cell := t.GetCell(coord)
	switch cell.Type() {
	case TypeText:
		text, _ := cell.AsText()
		if !strings.HasPrefix(text, "=") {
			return cell, nil
		}
		t.logger.Debug("evaluating formula", "cell", coord.String(), "formula", text, "depth", e.ctx.depth())
		return e.Evaluate(text[1:])
	case TypeFunction:
		f, _ := cell.AsFunction()
		t.logger.Debug("evaluating function", "cell", coord.String(), "function", f.Expression(), "depth", e.ctx.depth())
		return e.Evaluate(f.Expression())
	case TypeInteger, TypeDecimal, TypeBoolean, TypeDateTime, TypePercentage:
		return cell, nil
	}
	return cell, nil
}
