// Package elevator simulates a multi-car elevator bank.
// Hall calls are queued by a Dispatcher, assigned to cars by a stateless scheduler and
// served by per-car state machines that honor direction commitment.
// 이 패키지는 여러 대의 엘리베이터로 구성된 뱅크를 시뮬레이션합니다.
package elevator

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Simulator wires a Fleet, its Dispatcher and an EventLog together and exposes the
// in-process interface used by drivers (dashboard, tests).
type Simulator struct {
	Config Config

	fleet      *Fleet
	dispatcher *Dispatcher
	events     *EventLog
	logger     *slog.Logger
}

// NewSimulator validates cfg and builds the bank.
func NewSimulator(cfg Config, logger *slog.Logger) (*Simulator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	events := NewEventLog(cfg.EventLogSize, logger)

	fleet, err := NewFleet(cfg, logger, events)
	if err != nil {
		return nil, err
	}

	logger.Info("Simulator initialized",
		"cars", cfg.Cars,
		"min", cfg.MinFloor,
		"max", cfg.MaxFloor,
		"travel", cfg.TravelTime,
		"dwell", cfg.DoorOpenTime,
	)

	return &Simulator{
		Config:     cfg,
		fleet:      fleet,
		dispatcher: NewDispatcher(fleet, logger, events),
		events:     events,
		logger:     logger,
	}, nil
}

// RequestPickup enqueues a hall call.
func (s *Simulator) RequestPickup(floor int, dir Direction) error {
	return s.dispatcher.RequestPickup(floor, dir)
}

// SelectDestination forwards an onboard selection to carID.
func (s *Simulator) SelectDestination(carID, floor int) error {
	if err := s.fleet.SelectDestination(carID, floor); err != nil {
		s.logger.Warn("Destination rejected", "car", carID, "floor", floor, "error", err)
		s.events.Publish(Event{Type: EventRequestRejected, CarID: carID, Floor: floor, Reason: err.Error()})
		return err
	}
	return nil
}

// Snapshot returns the current view of one car.
func (s *Simulator) Snapshot(carID int) (CarSnapshot, error) {
	return s.fleet.Snapshot(carID)
}

// Snapshots returns the current view of every car.
func (s *Simulator) Snapshots() []CarSnapshot {
	return s.fleet.Snapshots()
}

// Pending returns the hall calls not yet assigned.
func (s *Simulator) Pending() []Pickup {
	return s.dispatcher.Pending()
}

// Tail returns the newest n events, oldest first.
func (s *Simulator) Tail(n int) []Event {
	return s.events.Tail(n)
}

// Subscribe streams future events. Call cancel when done.
func (s *Simulator) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.Subscribe(buffer)
}

// Dispatch runs one scheduling pass immediately.
func (s *Simulator) Dispatch() []Assignment {
	return s.dispatcher.Dispatch()
}

// Run starts the dispatch cycle and every car's motion cycle, and blocks until ctx is
// cancelled. Cancellation is cooperative: each loop finishes its current step first.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("Simulator started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.dispatcher.Run(ctx, s.Config.DispatchInterval)
	})
	g.Go(func() error {
		return s.fleet.Run(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		s.logger.Info("Simulator stopped")
		return nil
	}
	return err
}
