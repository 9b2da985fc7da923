package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// EventKind labels one frame on a session's live event channel
type EventKind string

const (
	EventSessionState  EventKind = "session_state"  // stage or question index changed
	EventAttemptUpdate EventKind = "attempt_update" // tick, transcript delta, or assessment
	EventWarning       EventKind = "warning"        // time limit approaching
	EventAttemptStop   EventKind = "attempt_stop"   // attempt stopped on request
	EventAutoStop      EventKind = "auto_stop"      // attempt stopped at the hard limit
)

// CaptureEvent is what websocket listeners receive while a session runs
type CaptureEvent struct {
	Kind          EventKind             `json:"kind"`
	SessionID     uuid.UUID             `json:"session_id"`
	Stage         entities.SessionStage `json:"stage"`
	QuestionIndex int                   `json:"question_index"`
	Snapshot      *Snapshot             `json:"snapshot,omitempty"`
	Result        *StopResult           `json:"result,omitempty"`
	At            time.Time             `json:"at"`
}

// listenerBuffer bounds each listener channel. A consumer that falls more
// than a buffer behind loses its oldest frames, never the newest.
const listenerBuffer = 16

// broadcaster fans capture events out to the websocket listeners of each
// session. Sends never block: when a listener's buffer is full the oldest
// queued event is dropped to make room for the new one.
type broadcaster struct {
	mu        sync.Mutex
	listeners map[uuid.UUID]map[uuid.UUID]chan CaptureEvent
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		listeners: make(map[uuid.UUID]map[uuid.UUID]chan CaptureEvent),
	}
}

// attach registers a listener for one session and returns its id and channel
func (b *broadcaster) attach(sessionID uuid.UUID) (uuid.UUID, <-chan CaptureEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan CaptureEvent, listenerBuffer)
	if b.listeners[sessionID] == nil {
		b.listeners[sessionID] = make(map[uuid.UUID]chan CaptureEvent)
	}
	b.listeners[sessionID][id] = ch
	return id, ch
}

// detach removes a listener and closes its channel
func (b *broadcaster) detach(sessionID, listenerID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chans, ok := b.listeners[sessionID]
	if !ok {
		return
	}
	ch, ok := chans[listenerID]
	if !ok {
		return
	}
	delete(chans, listenerID)
	if len(chans) == 0 {
		delete(b.listeners, sessionID)
	}
	close(ch)
}

// publish delivers one event to every listener of its session
func (b *broadcaster) publish(ev CaptureEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.listeners[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			// Full buffer: drop the oldest frame and retry once.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// closeSession closes every listener of a finished session
func (b *broadcaster) closeSession(sessionID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.listeners[sessionID] {
		close(ch)
	}
	delete(b.listeners, sessionID)
}
