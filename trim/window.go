package trim

import "fmt"

// Window selects the half-open row interval [Start, End) on axis 0 of
// every dataset.
type Window struct {
	Start uint64
	End   uint64
}

// FirstN returns a window covering the first n rows.
func FirstN(n int) (Window, error) {
	if n <= 0 {
		return Window{}, fmt.Errorf("%w: row count must be positive, got %d", ErrInvalidArgument, n)
	}
	return Window{Start: 0, End: uint64(n)}, nil
}

// Range returns the window [start, end).
func Range(start, end int) (Window, error) {
	if start < 0 {
		return Window{}, fmt.Errorf("%w: range start must be non-negative, got %d", ErrInvalidArgument, start)
	}
	if end <= start {
		return Window{}, fmt.Errorf("%w: range end %d must be greater than start %d", ErrInvalidArgument, end, start)
	}
	return Window{Start: uint64(start), End: uint64(end)}, nil
}

// Clamp returns the effective window for a dataset with length rows:
// [min(Start, length), min(End, length)). The result may be empty.
func (w Window) Clamp(length uint64) Window {
	c := w
	if c.Start > length {
		c.Start = length
	}
	if c.End > length {
		c.End = length
	}
	return c
}

// Len returns the number of rows the window covers.
func (w Window) Len() uint64 {
	if w.End <= w.Start {
		return 0
	}
	return w.End - w.Start
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Start, w.End)
}
