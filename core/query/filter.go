package query

import (
	"iter"

	"github.com/asaidimu/go-sift/core/value"
)

// Source is a pull-based sequence of items. Next returns false once the
// sequence is exhausted.
type Source[T any] interface {
	Next() (T, bool)
}

// SliceSource is a Source over the elements of a slice.
type SliceSource[T any] struct {
	items []T
	pos   int
}

// FromSlice returns a Source yielding items in order.
func FromSlice[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

// Next returns the next element of the slice.
func (s *SliceSource[T]) Next() (T, bool) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, false
	}
	item := s.items[s.pos]
	s.pos++
	return item, true
}

// Identity is the view function for sources that yield values directly.
func Identity(v value.Value) value.Value { return v }

// Filter lazily yields the items of a Source for which a Predicate evaluates
// to true. The view function extracts the value to evaluate from each item.
// A Filter is single pass: once its source is exhausted it stays exhausted.
type Filter[T any] struct {
	src  Source[T]
	pred Predicate
	view func(T) value.Value
	done bool
}

// NewFilter returns a Filter over src.
func NewFilter[T any](src Source[T], pred Predicate, view func(T) value.Value) *Filter[T] {
	return &Filter[T]{src: src, pred: pred, view: view}
}

// Next pulls from the source until an item matches or the source runs out.
func (f *Filter[T]) Next() (T, bool) {
	for !f.done {
		item, ok := f.src.Next()
		if !ok {
			f.done = true
			break
		}
		if Matches(f.pred, f.view(item)) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// All returns an iterator draining the filter.
func (f *Filter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := f.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// FilterSeq returns an iterator over the items of seq that match pred.
func FilterSeq[T any](seq iter.Seq[T], pred Predicate, view func(T) value.Value) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range seq {
			if Matches(pred, view(item)) && !yield(item) {
				return
			}
		}
	}
}

// Paginate skips the first offset items of seq and stops after limit items.
// A nil limit or offset means no bound.
func Paginate[T any](seq iter.Seq[T], limit, offset *uint64) iter.Seq[T] {
	return func(yield func(T) bool) {
		var skip uint64
		if offset != nil {
			skip = *offset
		}
		if limit != nil && *limit == 0 {
			return
		}
		var taken uint64
		for item := range seq {
			if skip > 0 {
				skip--
				continue
			}
			if !yield(item) {
				return
			}
			taken++
			if limit != nil && taken >= *limit {
				return
			}
		}
	}
}

// Select applies q to seq: the filter first, then the offset, then the
// limit. A nil q yields every item.
func Select[T any](seq iter.Seq[T], view func(T) value.Value, q *Query) iter.Seq[T] {
	if q == nil {
		return seq
	}
	if q.Filter != nil {
		seq = FilterSeq(seq, Compile(q.Filter), view)
	}
	return Paginate(seq, q.Limit, q.Offset)
}
