package elevator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventType represents the category of a fleet event.
// EventType는 이벤트의 카테고리를 나타냅니다.
type EventType string

const (
	EventFloorChange         EventType = "FloorChange"
	EventStateChange         EventType = "StateChange"
	EventDirectionChange     EventType = "DirectionChange"
	EventDoorOpened          EventType = "DoorOpened"
	EventDoorClosed          EventType = "DoorClosed"
	EventPickupRequested     EventType = "PickupRequested"
	EventPickupAssigned      EventType = "PickupAssigned"
	EventDestinationSelected EventType = "DestinationSelected"
	EventRequestRejected     EventType = "RequestRejected"
)

// Event carries one state change. CarID is 0 for bank-level events (hall calls).
type Event struct {
	Type      EventType
	CarID     int
	Floor     int
	Direction Direction
	State     CarState
	Reason    string
	Timestamp time.Time
}

func (e Event) String() string {
	ts := e.Timestamp.Format("15:04:05")
	switch e.Type {
	case EventFloorChange:
		return fmt.Sprintf("[%s] Car#%d moved to floor %d", ts, e.CarID, e.Floor)
	case EventStateChange:
		return fmt.Sprintf("[%s] Car#%d %s at floor %d", ts, e.CarID, e.State, e.Floor)
	case EventDirectionChange:
		return fmt.Sprintf("[%s] Car#%d heading %s from floor %d", ts, e.CarID, e.Direction, e.Floor)
	case EventDoorOpened:
		return fmt.Sprintf("[%s] Car#%d stop at %d (board/alight)", ts, e.CarID, e.Floor)
	case EventDoorClosed:
		return fmt.Sprintf("[%s] Car#%d doors closed at %d", ts, e.CarID, e.Floor)
	case EventPickupRequested:
		return fmt.Sprintf("[%s] %s request on floor %d received", ts, e.Direction, e.Floor)
	case EventPickupAssigned:
		return fmt.Sprintf("[%s] Assigned floor %d (%s) to Car#%d", ts, e.Floor, e.Direction.Arrow(), e.CarID)
	case EventDestinationSelected:
		return fmt.Sprintf("[%s] Car#%d: destination %d added", ts, e.CarID, e.Floor)
	case EventRequestRejected:
		return fmt.Sprintf("[%s] Rejected: %s", ts, e.Reason)
	}
	return fmt.Sprintf("[%s] %s", ts, e.Type)
}

// EventSink receives events from cars, the fleet and the dispatcher.
// Implementations must not block the caller.
type EventSink interface {
	Publish(Event)
}

type discardSink struct{}

func (discardSink) Publish(Event) {}

// DefaultEventLogSize bounds the in-memory history kept by EventLog.
const DefaultEventLogSize = 300

// EventLog keeps the most recent events in a ring and fans them out to subscribers.
// 최근 이벤트를 링 버퍼에 보관하고 구독자에게 전달합니다.
type EventLog struct {
	mu      sync.Mutex
	ring    []Event
	next    int
	full    bool
	subs    map[int]chan Event
	nextSub int

	droppedEventCount uint64
	logger            *slog.Logger
}

// NewEventLog creates a log retaining up to size events (DefaultEventLogSize if size <= 0).
func NewEventLog(size int, logger *slog.Logger) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLog{
		ring:   make([]Event, size),
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Publish records the event and forwards it to every subscriber without blocking.
// 구독 채널이 가득 차면 이벤트를 버리고 카운터를 증가시킵니다.
func (l *EventLog) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ring[l.next] = e
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}

	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
			l.droppedEventCount++
			// Log rarely to avoid flooding
			if l.droppedEventCount%100 == 1 {
				l.logger.Error("Event subscriber saturated", "dropped", l.droppedEventCount, "type", e.Type)
			}
		}
	}
}

// Tail returns up to n of the newest events, oldest first.
func (l *EventLog) Tail(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.next
	if l.full {
		count = len(l.ring)
	}
	if n > count {
		n = count
	}
	if n <= 0 {
		return nil
	}

	out := make([]Event, n)
	start := (l.next - n + len(l.ring)) % len(l.ring)
	for i := 0; i < n; i++ {
		out[i] = l.ring[(start+i)%len(l.ring)]
	}
	return out
}

// Subscribe returns a buffered channel receiving every future event and a cancel func
// that unregisters and closes it.
func (l *EventLog) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// DroppedEventCount returns how many events saturated subscribers missed.
func (l *EventLog) DroppedEventCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.droppedEventCount
}
