package gba

import "container/heap"

// The scheduler owns global time. The bus bills cycles into it on every
// memory access; peripherals register future events; the machine drains
// events that have come due after each instruction.

// EventKind identifies a scheduled event
type EventKind int

const (
	EventFrameComplete EventKind = iota
	EventHDraw
	EventHBlank
	EventVBlankHDraw
	EventVBlankHBlank
	EventKeypadInterrupt
)

// Event pairs an event kind with its due timestamp
type Event struct {
	Kind EventKind
	Time uint64
}

// eventHeap is a min-heap ordered by due time
type eventHeap []Event

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].Time < h[j].Time }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	*h = old[:n-1]
	return event
}

// Scheduler tracks the global timestamp and the pending event queue
type Scheduler struct {
	timestamp uint64
	events    eventHeap
}

// NewScheduler creates an empty scheduler at timestamp zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Timestamp returns the current global time in cycles
func (s *Scheduler) Timestamp() uint64 {
	return s.timestamp
}

// Update advances time by the given cycle count
func (s *Scheduler) Update(cycles uint64) {
	s.timestamp += cycles
}

// Schedule queues an event delta cycles from now
func (s *Scheduler) Schedule(kind EventKind, delta uint64) {
	heap.Push(&s.events, Event{Kind: kind, Time: s.timestamp + delta})
}

// ScheduleAt queues an event at an absolute timestamp
func (s *Scheduler) ScheduleAt(kind EventKind, timestamp uint64) {
	heap.Push(&s.events, Event{Kind: kind, Time: timestamp})
}

// Peek returns the next pending event without removing it
func (s *Scheduler) Peek() (Event, bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[0], true
}

// Pop removes and returns the next event if it has come due
func (s *Scheduler) Pop() (Event, bool) {
	if len(s.events) == 0 || s.timestamp < s.events[0].Time {
		return Event{}, false
	}
	return heap.Pop(&s.events).(Event), true
}

// Cancel removes every pending event of the given kind
func (s *Scheduler) Cancel(kind EventKind) {
	filtered := s.events[:0]
	for _, event := range s.events {
		if event.Kind != kind {
			filtered = append(filtered, event)
		}
	}
	s.events = filtered
	heap.Init(&s.events)
}

// CyclesUntilNextEvent returns how far away the next event is, or zero when
// the queue is empty
func (s *Scheduler) CyclesUntilNextEvent() uint64 {
	if len(s.events) == 0 {
		return 0
	}
	if s.events[0].Time <= s.timestamp {
		return 0
	}
	return s.events[0].Time - s.timestamp
}

// UpdateToNextEvent skips time forward to the next event's due time; used
// while the CPU is halted and only peripherals can make progress
func (s *Scheduler) UpdateToNextEvent() {
	s.timestamp += s.CyclesUntilNextEvent()
}

// TimestampOfNextEvent returns the due time of the next event, or the
// current time when the queue is empty
func (s *Scheduler) TimestampOfNextEvent() uint64 {
	if len(s.events) == 0 {
		return s.timestamp
	}
	return s.events[0].Time
}

// IsEmpty reports whether any events are pending
func (s *Scheduler) IsEmpty() bool {
	return len(s.events) == 0
}
