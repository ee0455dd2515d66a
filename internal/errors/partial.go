package errors

import (
	"fmt"
	"strings"
)

// PartialResult is what a batch operation produced: the accepted items, the
// rows that failed and notes about rows that were accepted with a caveat.
// Total counts every row seen.
type PartialResult[T any] struct {
	Items    []T
	Errors   []ItemError
	Warnings []string
	Total    int
}

// ItemError is a failed row. Where names it for a reader, such as "line 4"
// or a UID.
type ItemError struct {
	Index   int
	Where   string
	Message string
	Err     error
}

func (e *ItemError) Error() string {
	if e.Where != "" {
		return fmt.Sprintf("%s: %s", e.Where, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Index, e.Message)
}

func (e *ItemError) Unwrap() error { return e.Err }

func NewPartialResult[T any]() *PartialResult[T] {
	return &PartialResult[T]{}
}

func (p *PartialResult[T]) Add(item T) {
	p.Items = append(p.Items, item)
	p.Total++
}

func (p *PartialResult[T]) AddError(index int, where, message string, err error) {
	p.Errors = append(p.Errors, ItemError{Index: index, Where: where, Message: message, Err: err})
	p.Total++
}

func (p *PartialResult[T]) AddWarning(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

func (p *PartialResult[T]) SuccessCount() int {
	return len(p.Items)
}

// MapItems converts the items of p with fn and keeps its errors, warnings
// and total.
func MapItems[T, U any](p *PartialResult[T], fn func(T) U) *PartialResult[U] {
	out := &PartialResult[U]{Errors: p.Errors, Warnings: p.Warnings, Total: p.Total}
	for _, item := range p.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}

// Summary is one line of counts followed by a line per failed row.
func (p *PartialResult[T]) Summary() string {
	var sb strings.Builder
	if !p.HasErrors() {
		fmt.Fprintf(&sb, "all %d rows accepted", p.Total)
	} else {
		fmt.Fprintf(&sb, "%d/%d rows accepted, %d failed", p.SuccessCount(), p.Total, len(p.Errors))
	}
	if n := len(p.Warnings); n > 0 {
		fmt.Fprintf(&sb, ", %d warnings", n)
	}
	for _, e := range p.Errors {
		fmt.Fprintf(&sb, "\n  - %s", e.Error())
	}
	return sb.String()
}
