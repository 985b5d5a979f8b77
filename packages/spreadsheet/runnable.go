package spreadsheet

import (
	"fmt"
)

// RunnableTable provides a chainable interface over a Table. the first
// error stops the chain; later calls are no-ops until Reset.
type RunnableTable struct {
	table   *Table
	err     error
	printLn func(string)
}

// NewRunnableTable creates a new RunnableTable around a fresh table.
// printLn receives the output of Log and CheckError.
func NewRunnableTable(name string, printLn func(string), opts ...TableOption) *RunnableTable {
	t, err := NewTable(NewTableId(), name, opts...)
	return &RunnableTable{
		table:   t,
		err:     err,
		printLn: printLn,
	}
}

// Set stores a value at address (chainable)
func (r *RunnableTable) Set(address string, value DataValue) *RunnableTable {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	coord, err := ParseCoordinate(address)
	if err != nil {
		r.err = err
		return r
	}
	r.table.SetCell(coord, value)
	return r
}

// SetText stores text at address; text starting with '=' is a formula
// (chainable)
func (r *RunnableTable) SetText(address, text string) *RunnableTable {
	return r.Set(address, NewText(text))
}

// SetInt stores an integer at address (chainable)
func (r *RunnableTable) SetInt(address string, i int64) *RunnableTable {
	return r.Set(address, NewInteger(i))
}

// SetFunction stores a validated function value at address (chainable)
func (r *RunnableTable) SetFunction(address, expression string) *RunnableTable {
	if r.err != nil {
		return r
	}
	f, err := NewFunction(expression)
	if err != nil {
		r.err = err
		return r
	}
	return r.Set(address, NewFunctionValue(f))
}

// SetBatch sets multiple cells at once (chainable)
func (r *RunnableTable) SetBatch(cells map[string]DataValue) *RunnableTable {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	for address, value := range cells {
		if r.Set(address, value); r.err != nil {
			return r
		}
	}
	return r
}

// Clear removes the value at address (chainable)
func (r *RunnableTable) Clear(address string) *RunnableTable {
	if r.err != nil {
		return r
	}
	coord, err := ParseCoordinate(address)
	if err != nil {
		r.err = err
		return r
	}
	r.table.ClearCell(coord)
	return r
}

// InsertRowAfter inserts a row below row n (chainable)
func (r *RunnableTable) InsertRowAfter(n int) *RunnableTable {
	if r.err != nil {
		return r
	}
	r.err = r.table.InsertRowAfter(n)
	return r
}

// Get evaluates a cell for display
func (r *RunnableTable) Get(address string) (*RunnableTable, DataValue) {
	if r.err != nil {
		return r, Empty
	}
	coord, err := ParseCoordinate(address)
	if err != nil {
		r.err = err
		return r, Empty
	}
	v, err := r.table.GetValue(coord)
	if err != nil {
		r.err = err
		return r, Empty
	}
	return r, v
}

// GetBatch evaluates multiple cells
func (r *RunnableTable) GetBatch(addresses ...string) (*RunnableTable, map[string]DataValue) {
	if r.err != nil {
		return r, nil // no-op if there's already an error
	}

	results := make(map[string]DataValue, len(addresses))
	for _, address := range addresses {
		_, v := r.Get(address)
		if r.err != nil {
			return r, nil
		}
		results[address] = v
	}
	return r, results
}

// Value is a helper to get a single evaluated value from the chain.
// example: v := NewRunnableTable("t", nil).SetInt("A1", 10).SetText("A2", "=A1*2").Value("A2")
func (r *RunnableTable) Value(address string) DataValue {
	_, v := r.Get(address)
	return v
}

// Values is a helper to get multiple values from the chain
func (r *RunnableTable) Values(addresses ...string) []DataValue {
	if r.err != nil {
		return nil
	}
	values := make([]DataValue, len(addresses))
	for i, address := range addresses {
		values[i] = r.Value(address)
		if r.err != nil {
			return nil
		}
	}
	return values
}

// Run returns the table and any error from the chain. typically the last
// method in the chain
func (r *RunnableTable) Run() (*Table, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.table, nil
}

// RunOrPanic is Run but panics on error. useful for examples and tests
// where you want to fail fast
func (r *RunnableTable) RunOrPanic() *Table {
	t, err := r.Run()
	if err != nil {
		panic(err)
	}
	return t
}

// Error returns the current error state
func (r *RunnableTable) Error() error {
	return r.err
}

// Table returns the underlying table. use with caution as it bypasses
// error tracking.
func (r *RunnableTable) Table() *Table {
	return r.table
}

// Reset clears the error state (chainable)
func (r *RunnableTable) Reset() *RunnableTable {
	r.err = nil
	return r
}

// Then allows conditional execution based on current error state
func (r *RunnableTable) Then(fn func(*RunnableTable) *RunnableTable) *RunnableTable {
	if r.err != nil {
		return r // skip if there's an error
	}
	return fn(r)
}

// OnError allows error handling in the chain
func (r *RunnableTable) OnError(fn func(error) error) *RunnableTable {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if there's an error (chainable)
func (r *RunnableTable) Must() *RunnableTable {
	if r.err != nil {
		panic(r.err)
	}
	return r
}

// If allows conditional operations in the chain
func (r *RunnableTable) If(condition bool, fn func(*RunnableTable) *RunnableTable) *RunnableTable {
	if r.err != nil || !condition {
		return r // skip if there's an error or condition is false
	}
	return fn(r)
}

// ForEach calls fn for every coordinate in the rectangle spanned by
// rows startRow..endRow and columns startCol..endCol (chainable)
func (r *RunnableTable) ForEach(startRow, endRow int, startCol, endCol rune, fn func(coord Coordinate, r *RunnableTable)) *RunnableTable {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			coord, err := NewCoordinate(row, col)
			if err != nil {
				r.err = err
				return r
			}
			fn(coord, r)
			if r.err != nil {
				return r // stop on first error
			}
		}
	}
	return r
}

// CheckError logs the current error using the printLn function (chainable)
func (r *RunnableTable) CheckError() *RunnableTable {
	if r.err != nil {
		r.print(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.print("No errors")
	}
	return r
}

// Log logs the evaluated value of a cell using the printLn function
// (chainable)
func (r *RunnableTable) Log(address string) *RunnableTable {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	v := r.Value(address)
	if r.err != nil {
		return r
	}
	if v.IsEmpty() {
		r.print(fmt.Sprintf("%s: <empty>", address))
	} else {
		r.print(fmt.Sprintf("%s: %s", address, v))
	}
	return r
}

func (r *RunnableTable) print(s string) {
	if r.printLn != nil {
		r.printLn(s)
	}
}
