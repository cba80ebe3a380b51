package tabs

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is wrapped by every IndexError
var ErrIndexOutOfRange = errors.New("tab index out of range")

// IndexError reports an operation addressed past the end of the collection.
// It is a caller contract violation, not a runtime condition.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tabs: %s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// Tab is a tab record: its position and its payload
type Tab struct {
	Index   int
	Payload Payload
}

// EventKind identifies what a notification was emitted for
type EventKind string

const (
	EventActiveChanged EventKind = "active_changed"
	EventBatchAppended EventKind = "batch_appended"
	EventCleared       EventKind = "cleared"
)

// Event is published after each committed mutation. Listeners treat it as
// "state changed, re-read"; the fields are a convenience.
type Event struct {
	Kind    EventKind
	Active  Payload
	Count   int
	Current int
}

// Sink receives collection events
type Sink interface {
	Publish(Event)
}

// Collection is the ordered tab list plus the current-tab pointer.
//
// Invariants after every public method returns:
//   - tab i has Index == i
//   - current == -1 iff the list is empty, otherwise 0 <= current < Len()
//
// Collection is not safe for concurrent use; the session serializes access.
type Collection struct {
	tabs    []*Tab
	current int
	active  Payload
	codec   Codec
	sink    Sink
}

// NewCollection creates an empty collection. sink may be nil.
func NewCollection(codec Codec, sink Sink) *Collection {
	return &Collection{
		current: -1,
		active:  codec.New(),
		codec:   codec,
		sink:    sink,
	}
}

// Len returns the number of tabs
func (c *Collection) Len() int {
	return len(c.tabs)
}

// Current returns the current tab index, -1 when empty
func (c *Collection) Current() int {
	return c.current
}

// Active returns the payload shown as the active tab
func (c *Collection) Active() Payload {
	return c.active
}

// At returns a copy of tab i
func (c *Collection) At(i int) (Tab, error) {
	if err := c.check("at", i); err != nil {
		return Tab{}, err
	}
	return *c.tabs[i], nil
}

// Tabs returns copies of all tabs in order
func (c *Collection) Tabs() []Tab {
	out := make([]Tab, len(c.tabs))
	for i, t := range c.tabs {
		out[i] = *t
	}
	return out
}

// Append adds p at the end and makes it current
func (c *Collection) Append(p Payload) Tab {
	t := c.push(p)
	c.selectLast()
	c.emit(EventActiveChanged)
	return *t
}

// AppendDefault appends a fresh default tab
func (c *Collection) AppendDefault() Tab {
	return c.Append(c.codec.New())
}

// AppendBatch adds ps in order and makes the last one current, emitting a
// single event. An empty batch changes nothing.
func (c *Collection) AppendBatch(ps []Payload) []Tab {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Tab, len(ps))
	for i, p := range ps {
		out[i] = *c.push(p)
	}
	c.selectLast()
	c.emit(EventBatchAppended)
	return out
}

// RemoveAt removes tab i, renumbers the tail and selects the new last tab.
// Removing the only tab leaves a fresh default tab in its place.
func (c *Collection) RemoveAt(i int) error {
	if err := c.check("remove", i); err != nil {
		return err
	}

	c.tabs = slices.Delete(c.tabs, i, i+1)
	for j := i; j < len(c.tabs); j++ {
		c.tabs[j].Index = j
	}

	if len(c.tabs) == 0 {
		c.push(c.codec.New())
	}
	c.selectLast()
	c.emit(EventActiveChanged)
	return nil
}

// SelectAt makes tab i current. Selecting the current tab is a no-op.
func (c *Collection) SelectAt(i int) error {
	if err := c.check("select", i); err != nil {
		return err
	}
	if i == c.current {
		return nil
	}
	c.current = i
	c.active = c.tabs[i].Payload
	c.emit(EventActiveChanged)
	return nil
}

// Clear removes every tab and resets the active payload
func (c *Collection) Clear() {
	c.tabs = nil
	c.current = -1
	c.active = c.codec.New()
	c.emit(EventCleared)
}

func (c *Collection) push(p Payload) *Tab {
	t := &Tab{Index: len(c.tabs), Payload: p}
	c.tabs = append(c.tabs, t)
	return t
}

func (c *Collection) selectLast() {
	c.current = len(c.tabs) - 1
	c.active = c.tabs[c.current].Payload
}

func (c *Collection) check(op string, i int) error {
	if i < 0 || i >= len(c.tabs) {
		return &IndexError{Op: op, Index: i, Len: len(c.tabs)}
	}
	return nil
}

func (c *Collection) emit(kind EventKind) {
	if c.sink == nil {
		return
	}
	c.sink.Publish(Event{
		Kind:    kind,
		Active:  c.active,
		Count:   len(c.tabs),
		Current: c.current,
	})
}
