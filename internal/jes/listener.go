package jes

// Listener receives human-readable progress and error lines from a Connector.
// The connector never owns a log sink itself; callers plug in whatever they
// log with (the CLI wires a zap logger here).
type Listener interface {
	Info(text string)
	Error(text string)
}

type nopListener struct{}

func (nopListener) Info(string)  {}
func (nopListener) Error(string) {}
