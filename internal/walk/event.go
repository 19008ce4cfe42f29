package stride

// EventKind tells what a Walker step produced.
type EventKind int

const (
	// EventEntry is a leaf visit: a file, a directory at max depth, or a failure.
	EventEntry EventKind = iota
	// EventStartDirectory means a directory was opened and pushed on the stack.
	EventStartDirectory
	// EventEndDirectory means a directory was fully drained (or skipped) and popped.
	EventEndDirectory
)

var eventKindStrings = [...]string{
	"Entry",
	"StartDirectory",
	"EndDirectory",
}

func (k EventKind) String() string {
	if k < EventEntry || k > EventEndDirectory {
		return "Unknown"
	}
	return eventKindStrings[k]
}

// Event is one step of a traversal. It is immutable once created.
type Event struct {
	kind  EventKind
	path  string
	attrs Attributes
	err   error
}

func newEvent(kind EventKind, path string, attrs Attributes) Event {
	return Event{kind: kind, path: path, attrs: attrs}
}

func newErrorEvent(kind EventKind, path string, err error) Event {
	return Event{kind: kind, path: path, err: err}
}

// Kind returns the event kind.
func (e Event) Kind() EventKind { return e.kind }

// Path returns the visited location.
func (e Event) Path() string { return e.path }

// Attributes returns the attributes of the location. They are only meaningful for
// EventEntry and EventStartDirectory events whose Err is nil.
func (e Event) Attributes() Attributes { return e.attrs }

// Err returns the failure attached to the event. For EventEndDirectory it is the
// error, if any, that stopped the directory listing early.
func (e Event) Err() error { return e.err }
