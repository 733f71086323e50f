package elevator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Dispatcher holds the pending hall calls and runs the dispatch cycle: take every pending
// pickup, score it against fresh car snapshots, hand the result to the fleet.
// A pickup leaves the pending set exactly when it is handed to Assign, so it is never
// lost or assigned twice.
type Dispatcher struct {
	mu      sync.Mutex
	pending []Pickup // insertion order, no duplicates

	fleet  *Fleet
	logger *slog.Logger
	sink   EventSink
}

// NewDispatcher creates a dispatcher feeding fleet.
func NewDispatcher(fleet *Fleet, logger *slog.Logger, sink EventSink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = discardSink{}
	}
	return &Dispatcher{
		fleet:  fleet,
		logger: logger.With("component", "dispatcher"),
		sink:   sink,
	}
}

// RequestPickup enqueues a hall call. Invalid calls are dropped and reported.
// A call identical to one already pending is absorbed.
func (d *Dispatcher) RequestPickup(floor int, dir Direction) error {
	if err := d.fleet.Bounds().CheckPickup(floor, dir); err != nil {
		d.logger.Warn("Hall call rejected", "floor", floor, "dir", dir, "error", err)
		d.sink.Publish(Event{Type: EventRequestRejected, Floor: floor, Direction: dir, Reason: err.Error(), Timestamp: time.Now()})
		return err
	}

	p := Pickup{Floor: floor, Direction: dir}

	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.pending, p) {
		d.logger.Debug("Hall call already pending", "pickup", p)
		return nil
	}
	d.pending = append(d.pending, p)

	d.logger.Info("Hall call received", "floor", floor, "dir", dir)
	d.sink.Publish(Event{Type: EventPickupRequested, Floor: floor, Direction: dir, Timestamp: time.Now()})
	return nil
}

// Dispatch runs one scheduling pass. With nothing pending it is a no-op.
func (d *Dispatcher) Dispatch() []Assignment {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	assignments := Assign(pending, d.fleet.Snapshots())
	for _, a := range assignments {
		d.logger.Info("Assigned", "pickup", a.Pickup, "car", a.CarID)
	}

	if failed := d.fleet.ApplyAssignments(assignments); len(failed) > 0 {
		d.requeue(failed)
	}
	return assignments
}

// requeue puts back pickups the fleet could not apply so the next pass retries them.
func (d *Dispatcher) requeue(failed []Assignment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range failed {
		if !slices.Contains(d.pending, a.Pickup) {
			d.pending = append(d.pending, a.Pickup)
		}
	}
}

// Pending returns a copy of the outstanding hall calls.
func (d *Dispatcher) Pending() []Pickup {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Pickup, len(d.pending))
	copy(out, d.pending)
	return out
}

func (d *Dispatcher) String() string {
	pending := d.Pending()
	parts := make([]string, len(pending))
	for i, p := range pending {
		parts[i] = p.String()
	}
	return fmt.Sprintf("HallCalls: [%s]", strings.Join(parts, " "))
}

// Run executes the dispatch cycle every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	d.logger.Info("Dispatch cycle started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatch cycle stopping (Context Cancelled)")
			return ctx.Err()
		case <-ticker.C:
			d.Dispatch()
		}
	}
}
