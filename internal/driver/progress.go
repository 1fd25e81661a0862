package driver

import "time"

// Stage describes one step of formatting a file.
type Stage string

const (
	// StageRead loads the file from disk.
	StageRead Stage = "read"
	// StageFormat runs the formatting pipeline.
	StageFormat Stage = "format"
	// StageVerify reparses the output and compares meaning.
	StageVerify Stage = "verify"
	// StageWrite writes the result back.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusSkipped means the file was already formatted and nothing was written.
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: workers report independently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
