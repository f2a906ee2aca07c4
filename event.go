// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend every call it
// creates with custom functionality, such as metrics or tracing.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs after a
	// call has been claimed by Execute or Enqueue and its transport
	// call created, but before any network I/O.
	//
	// When a call fires BeforeExecutionStart, the execution's ID,
	// Async, Request and Start fields are set.
	//
	// BeforeExecutionStart does not fire if the request could not be
	// created. AfterExecutionEnd still fires in that case.
	BeforeExecutionStart Event = iota
	// BeforeParse identifies the event that occurs after the transport
	// has produced a raw response (as opposed to an error) but before
	// the response pipeline reads the body.
	//
	// When a call fires BeforeParse, the execution's Raw field is set
	// to the transport response. Handlers must not read its body.
	//
	// Note that BeforeParse fires regardless of the response status
	// code.
	BeforeParse
	// AfterExecutionEnd identifies the event that occurs after the
	// call's outcome is known, just before it is returned from Execute
	// or delivered to the Enqueue callback.
	//
	// When a call fires AfterExecutionEnd, End is set and Err holds the
	// error the caller will see, if any. For a successful call, Raw
	// holds the transport response with its body detached.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeParse",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur during
// a call execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeParse,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
