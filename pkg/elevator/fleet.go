package elevator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Fleet owns the car collection. It routes assignments and destination selections to
// the right car and drives ticks; it performs no scheduling itself.
// Fleet는 차량 집합을 소유하며 배정을 해당 차량에 전달합니다.
type Fleet struct {
	cars   []*Car
	byID   map[int]*Car
	bounds FloorRange
	logger *slog.Logger
}

// NewFleet creates cfg.Cars idle cars with ids 1..N at their configured start floors.
func NewFleet(cfg Config, logger *slog.Logger, sink EventSink) (*Fleet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fleet{
		cars:   make([]*Car, 0, cfg.Cars),
		byID:   make(map[int]*Car, cfg.Cars),
		bounds: cfg.Bounds(),
		logger: logger,
	}
	for i := 0; i < cfg.Cars; i++ {
		car, err := NewCar(i+1, cfg.StartFloor(i), cfg.CarConfig(), logger, sink)
		if err != nil {
			return nil, err
		}
		f.cars = append(f.cars, car)
		f.byID[car.ID()] = car
	}
	return f, nil
}

// Bounds returns the floor range shared by every car.
func (f *Fleet) Bounds() FloorRange {
	return f.bounds
}

// HasCar reports whether id names a car in the fleet.
func (f *Fleet) HasCar(id int) bool {
	_, ok := f.byID[id]
	return ok
}

// Car returns the car with the given id.
func (f *Fleet) Car(id int) (*Car, error) {
	car, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("car %d: %w", id, ErrUnknownCar)
	}
	return car, nil
}

// Snapshots returns a point-in-time copy of every car, in id order.
// Each car is copied under its own lock; cars are never locked together.
func (f *Fleet) Snapshots() []CarSnapshot {
	out := make([]CarSnapshot, len(f.cars))
	for i, car := range f.cars {
		out[i] = car.Snapshot()
	}
	return out
}

// Snapshot returns the snapshot of a single car.
func (f *Fleet) Snapshot(id int) (CarSnapshot, error) {
	car, err := f.Car(id)
	if err != nil {
		return CarSnapshot{}, err
	}
	return car.Snapshot(), nil
}

// ApplyAssignments routes each assignment to its car. Assignments for unknown cars are
// logged and skipped; the returned slice holds the ones that were not applied.
func (f *Fleet) ApplyAssignments(assignments []Assignment) []Assignment {
	var failed []Assignment
	for _, a := range assignments {
		car, ok := f.byID[a.CarID]
		if !ok {
			f.logger.Warn("Assignment dropped: unknown car", "car", a.CarID, "pickup", a.Pickup)
			failed = append(failed, a)
			continue
		}
		if err := car.Assign(a); err != nil {
			f.logger.Warn("Assignment rejected", "car", a.CarID, "error", err)
			failed = append(failed, a)
		}
	}
	return failed
}

// SelectDestination validates the car id and floor before forwarding to the car.
func (f *Fleet) SelectDestination(carID, floor int) error {
	car, err := f.Car(carID)
	if err != nil {
		return err
	}
	if !f.bounds.Contains(floor) {
		return fmt.Errorf("car %d destination %d (range %d-%d): %w",
			carID, floor, f.bounds.Min, f.bounds.Max, ErrOutOfRangeFloor)
	}
	return car.SelectDestination(floor)
}

// TickAll advances every car by one discrete step.
func (f *Fleet) TickAll() {
	for _, car := range f.cars {
		car.Tick()
	}
}

// Run starts one motion cycle per car and blocks until ctx is cancelled.
func (f *Fleet) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, car := range f.cars {
		g.Go(func() error {
			return car.Run(ctx)
		})
	}
	return g.Wait()
}
