package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/blazetool/targetmap/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-syncing
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
	mu          sync.Mutex
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic. Events flush after
// quietPeriod without new input, or after maxWait from the first event of a
// burst, whichever comes first.
func (d *Debouncer) run(ctx context.Context) {
	var (
		quietTimer  = time.NewTimer(d.quietPeriod)
		maxTimer    = time.NewTimer(d.maxWait)
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)
	quietTimer.Stop()
	maxTimer.Stop()

	flush := func() {
		quietTimer.Stop()
		maxTimer.Stop()

		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// BUILD file changes go first since they trigger a full re-sync
		if paths := accumulated[ChangeTypeBuildFile]; len(paths) > 0 {
			d.output <- ChangeEvent{
				Type:      ChangeTypeBuildFile,
				Paths:     paths,
				Timestamp: time.Now(),
			}
		}
		if paths := accumulated[ChangeTypeSourceFile]; len(paths) > 0 {
			d.output <- ChangeEvent{
				Type:      ChangeTypeSourceFile,
				Paths:     paths,
				Timestamp: time.Now(),
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			quietTimer.Reset(d.quietPeriod)
			if eventCount == 1 {
				maxTimer.Reset(d.maxWait)
			}

		case <-quietTimer.C:
			flush()

		case <-maxTimer.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
