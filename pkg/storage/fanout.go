package storage

// MultiSink composes an ordered list of child sinks into one, grounded
// on original_source/hawthorn.py's MultiStorage. Record delegates to each
// child in order: the local append-log should be listed before
// replication so a crash mid-fanout leaves a replay-safe log.
type MultiSink struct {
	children []Sink
}

// NewMultiSink composes children, in the order Record should visit them.
func NewMultiSink(children ...Sink) *MultiSink {
	return &MultiSink{children: children}
}

// Suppress delegates to every child.
func (m *MultiSink) Suppress(suppress bool) {
	for _, c := range m.children {
		c.Suppress(suppress)
	}
}

// Load delegates to every child in order.
func (m *MultiSink) Load(exec Executor) error {
	for _, c := range m.children {
		if err := c.Load(exec); err != nil {
			return err
		}
	}
	return nil
}

// Record delegates to every child in order.
func (m *MultiSink) Record(verb string, params []any) error {
	for _, c := range m.children {
		if err := c.Record(verb, params); err != nil {
			return err
		}
	}
	return nil
}
