// Package tabs implements the tab collection state machine.
//
// A tab is an opaque Payload plus its position. Every mutation renumbers so
// that positions stay zero-based and contiguous, and emits exactly one Event
// to the Sink once the mutation has been committed:
//
//	Append       one event, new tab becomes current
//	AppendBatch  one aggregate event for the whole batch
//	RemoveAt     one event, new last tab becomes current (a default tab is
//	             synthesized when the last one is removed)
//	SelectAt     one event, or none when selecting the current tab
//	Clear        one event, collection left empty
package tabs
