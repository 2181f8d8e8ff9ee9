// Package trace implements the eligibility trace: past events grouped by
// occurrence time, kept in strictly ascending time order, scored by recency
// decay and indexed by time and by top-level term.
package trace

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/term"
)

// DefaultMaxLength is the default bound on the number of items.
const DefaultMaxLength = 10000

// Item holds the events that share one occurrence time.
//
// INVARIANT: every event in Events occurs at Time.
type Item struct {
	Time   int64
	Events []*nal.Task
	Decay  float64
}

func newItem(event *nal.Task) *Item {
	return &Item{
		Time:   event.Occurrence(),
		Events: []*nal.Task{event},
		Decay:  1.0,
	}
}

// updateDecay sets Decay = exp(-(wallclock - Time) * factor).
func (it *Item) updateDecay(wallclock int64, factor float64) {
	it.Decay = math.Exp(-float64(wallclock-it.Time) * factor)
}

func (it *Item) contains(event *nal.Task) bool {
	for _, e := range it.Events {
		if e.Sentence.Equal(event.Sentence) {
			return true
		}
	}
	return false
}

// Trace is the eligibility trace.
//
// INVARIANTS:
//   - items is strictly ascending by Time (no duplicate times)
//   - byTime[t] is the item with Time t, for every item
//   - byTerm[k] lists, without repeats, exactly the items holding an event
//     whose top-level term has key k; empty buckets are removed
//
// Not safe for concurrent use; the control loop owns it.
type Trace struct {
	maxLength int
	items     []*Item
	byTime    map[int64]*Item
	byTerm    map[string][]*Item

	logger *slog.Logger
}

// Option configures a Trace.
type Option func(*Trace)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(tr *Trace) {
		tr.logger = l
	}
}

// New creates an empty trace bounded to maxLength items.
// A non-positive maxLength selects DefaultMaxLength.
func New(maxLength int, opts ...Option) *Trace {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	tr := &Trace{
		maxLength: maxLength,
		byTime:    make(map[int64]*Item),
		byTerm:    make(map[string][]*Item),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// AddEvent records event in the item for its occurrence time, creating the
// item if needed. Events content-equal to one already in the item are
// ignored.
//
// Panics with a *ContractError if event is eternal.
func (tr *Trace) AddEvent(event *nal.Task) {
	if event.Sentence.IsEternal() {
		panic(&ContractError{
			Code:    ErrCodeEternalEvent,
			Message: fmt.Sprintf("eternal event %s handed to the trace", event.Sentence),
			Time:    event.Occurrence(),
		})
	}

	if it, ok := tr.byTime[event.Occurrence()]; ok {
		if it.contains(event) {
			return
		}
		it.Events = append(it.Events, event)
		tr.index(event.Term(), it)
		return
	}

	tr.insert(newItem(event))
}

// insert places a new item in time order and indexes it.
func (tr *Trace) insert(it *Item) {
	if _, dup := tr.byTime[it.Time]; dup {
		tr.logger.Error("trace item with duplicate time not inserted",
			"code", ErrCodeDuplicateTime,
			"time", it.Time,
		)
		return
	}

	n := len(tr.items)
	if n == 0 || tr.items[n-1].Time < it.Time {
		tr.items = append(tr.items, it)
	} else {
		idx, found := tr.search(it.Time)
		if found {
			// byTime and items disagree; refuse rather than break ordering.
			tr.logger.Error("trace item with duplicate time not inserted",
				"code", ErrCodeDuplicateTime,
				"time", it.Time,
			)
			return
		}
		tr.items = slices.Insert(tr.items, idx, it)
	}

	tr.byTime[it.Time] = it
	for _, e := range it.Events {
		tr.index(e.Term(), it)
	}
}

func (tr *Trace) search(time int64) (int, bool) {
	return slices.BinarySearchFunc(tr.items, time, func(it *Item, t int64) int {
		return cmp.Compare(it.Time, t)
	})
}

// ClosestIndex returns the index of the item whose time equals time
// exactly. There is no nearest-neighbour fallback.
func (tr *Trace) ClosestIndex(time int64) (int, bool) {
	return tr.search(time)
}

// LimitMemory evicts the oldest items until the trace fits its bound.
func (tr *Trace) LimitMemory() {
	excess := len(tr.items) - tr.maxLength
	if excess <= 0 {
		return
	}
	for _, it := range tr.items[:excess] {
		for _, e := range it.Events {
			tr.unindex(e.Term(), it)
		}
		delete(tr.byTime, it.Time)
	}
	tr.items = slices.Delete(tr.items, 0, excess)
}

// UpdateDecay recomputes every item's decay for the given wall-clock time.
func (tr *Trace) UpdateDecay(wallclock int64, factor float64) {
	for _, it := range tr.items {
		it.updateDecay(wallclock, factor)
	}
}

// index registers it under the top-level term t. Subterms are not indexed.
func (tr *Trace) index(t term.Term, it *Item) {
	key := term.Key(t)
	bucket := tr.byTerm[key]
	if slices.Contains(bucket, it) {
		return
	}
	tr.byTerm[key] = append(bucket, it)
}

func (tr *Trace) unindex(t term.Term, it *Item) {
	key := term.Key(t)
	bucket, ok := tr.byTerm[key]
	if !ok {
		return
	}
	bucket = slices.DeleteFunc(bucket, func(x *Item) bool { return x == it })
	if len(bucket) == 0 {
		delete(tr.byTerm, key)
		return
	}
	tr.byTerm[key] = bucket
}

// Len returns the number of items.
func (tr *Trace) Len() int {
	return len(tr.items)
}

// MaxLength returns the item bound.
func (tr *Trace) MaxLength() int {
	return tr.maxLength
}

// At returns the item at index i.
func (tr *Trace) At(i int) *Item {
	return tr.items[i]
}

// Items returns the items in ascending time order. The slice must not be
// modified.
func (tr *Trace) Items() []*Item {
	return tr.items
}

// ItemAt returns the item with the given occurrence time.
func (tr *Trace) ItemAt(time int64) (*Item, bool) {
	it, ok := tr.byTime[time]
	return it, ok
}

// ItemsByTerm returns the items holding an event whose top-level term is t,
// in insertion order. The slice must not be modified.
func (tr *Trace) ItemsByTerm(t term.Term) []*Item {
	return tr.byTerm[term.Key(t)]
}

// Terms returns the number of distinct indexed terms.
func (tr *Trace) Terms() int {
	return len(tr.byTerm)
}

// Recent returns the events of the last horizon items, oldest first.
func (tr *Trace) Recent(horizon int) []*nal.Task {
	start := max(len(tr.items)-horizon, 0)
	var out []*nal.Task
	for _, it := range tr.items[start:] {
		out = append(out, it.Events...)
	}
	return out
}

// Reset drops all items.
func (tr *Trace) Reset() {
	clear(tr.items)
	tr.items = tr.items[:0]
	clear(tr.byTime)
	clear(tr.byTerm)
}

// CheckInvariants verifies ordering and both indexes against the items.
func (tr *Trace) CheckInvariants() error {
	for i, it := range tr.items {
		if i > 0 {
			prev := tr.items[i-1]
			if prev.Time == it.Time {
				return &ContractError{Code: ErrCodeDuplicateTime, Message: "two items share a time", Time: it.Time}
			}
			if prev.Time > it.Time {
				return &ContractError{Code: ErrCodeUnordered, Message: fmt.Sprintf("item %d precedes an earlier item", i-1), Time: it.Time}
			}
		}
		if tr.byTime[it.Time] != it {
			return &ContractError{Code: ErrCodeIndex, Message: "time index does not point at item", Time: it.Time}
		}
		for _, e := range it.Events {
			if e.Occurrence() != it.Time {
				return &ContractError{Code: ErrCodeIndex, Message: fmt.Sprintf("event %s in wrong item", e.Sentence), Time: it.Time}
			}
			if !slices.Contains(tr.byTerm[term.Key(e.Term())], it) {
				return &ContractError{Code: ErrCodeIndex, Message: fmt.Sprintf("term %s not indexed", e.Term()), Time: it.Time}
			}
		}
	}
	if len(tr.byTime) != len(tr.items) {
		return &ContractError{Code: ErrCodeIndex, Message: fmt.Sprintf("time index has %d entries for %d items", len(tr.byTime), len(tr.items))}
	}
	for key, bucket := range tr.byTerm {
		if len(bucket) == 0 {
			return &ContractError{Code: ErrCodeIndex, Message: "empty term bucket"}
		}
		for _, it := range bucket {
			if tr.byTime[it.Time] != it {
				return &ContractError{Code: ErrCodeIndex, Message: "term index points at evicted item", Time: it.Time}
			}
			if !slices.ContainsFunc(it.Events, func(e *nal.Task) bool { return term.Key(e.Term()) == key }) {
				return &ContractError{Code: ErrCodeIndex, Message: "term index points at item without the term", Time: it.Time}
			}
		}
	}
	return nil
}
