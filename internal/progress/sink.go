package progress

import "context"

// Sink consumes individual progress events. Implementations must be safe for
// repeated calls and honor ctx deadlines.
type Sink interface {
	Record(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Recorder satisfies this interface so
// the engine and fetchers can remain agnostic about where events land.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}
