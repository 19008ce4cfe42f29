package stride

// EventCursor turns a Walker into a single-pass sequence of visible events.
// END_DIRECTORY events are bookkeeping and are dropped unless they carry an error.
//
// HasNext fetches at most one event ahead. Once it has reported true, Next does
// no I/O: a failure attached to the buffered event was already known when
// HasNext ran, and Next merely returns it.
type EventCursor struct {
	w      *Walker
	next   *Event
	closed bool
}

// NewEventCursor starts w at root and buffers the root event.
func NewEventCursor(w *Walker, root string) (*EventCursor, error) {
	ev, err := w.Start(root)
	if err != nil {
		return nil, err
	}
	return &EventCursor{w: w, next: &ev}, nil
}

// HasNext reports whether another event is available. The only errors it
// returns are ErrIllegalState errors.
func (c *EventCursor) HasNext() (bool, error) {
	if c.closed || !c.w.IsOpen() {
		return false, ErrClosed
	}
	if err := c.fetch(); err != nil {
		return false, err
	}
	return c.next != nil, nil
}

// Next takes the buffered event. If the event carries a failure, the failure is
// returned as the error along with the event.
func (c *EventCursor) Next() (Event, error) {
	if c.closed || !c.w.IsOpen() {
		return Event{}, ErrClosed
	}
	if err := c.fetch(); err != nil {
		return Event{}, err
	}
	if c.next == nil {
		return Event{}, ErrExhausted
	}
	ev := *c.next
	c.next = nil
	return ev, ev.Err()
}

// Close closes the underlying Walker. Calling it again is a no-op.
func (c *EventCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.next = nil
	return c.w.Close()
}

func (c *EventCursor) fetch() error {
	if c.next != nil {
		return nil
	}
	for {
		ev, ok, err := c.w.Advance()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if ev.Kind() != EventEndDirectory || ev.Err() != nil {
			c.next = &ev
			return nil
		}
	}
}
