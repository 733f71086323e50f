package elevator

import (
	"errors"
	"testing"
	"time"
)

func testConfig(startFloors ...int) Config {
	cfg := DefaultConfig()
	cfg.Cars = len(startFloors)
	cfg.StartFloors = startFloors
	cfg.TravelTime = 5 * time.Millisecond
	cfg.DoorOpenTime = 5 * time.Millisecond
	cfg.DispatchInterval = 2 * time.Millisecond
	cfg.IdlePoll = time.Millisecond
	return cfg
}

func newTestFleet(t *testing.T, startFloors ...int) *Fleet {
	t.Helper()
	f, err := NewFleet(testConfig(startFloors...), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create fleet: %v", err)
	}
	return f
}

func TestFleet_Init(t *testing.T) {
	f := newTestFleet(t, 1, 10, 3)
	snaps := f.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("Expected 3 cars, got %d", len(snaps))
	}
	for i, want := range []int{1, 10, 3} {
		if snaps[i].ID != i+1 || snaps[i].Floor != want {
			t.Errorf("Expected car %d at %d, got car %d at %d", i+1, want, snaps[i].ID, snaps[i].Floor)
		}
	}
	if !f.HasCar(3) || f.HasCar(4) {
		t.Error("Expected HasCar true for 3 and false for 4")
	}
}

func TestFleet_InvalidConfig(t *testing.T) {
	cfg := testConfig(1, 2)
	cfg.StartFloors = []int{1}
	if _, err := NewFleet(cfg, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestFleet_SelectDestination(t *testing.T) {
	f := newTestFleet(t, 1, 5)

	if err := f.SelectDestination(3, 4); !errors.Is(err, ErrUnknownCar) {
		t.Errorf("Expected ErrUnknownCar, got %v", err)
	}
	for _, floor := range []int{0, 11} {
		if err := f.SelectDestination(1, floor); !errors.Is(err, ErrOutOfRangeFloor) {
			t.Errorf("Expected ErrOutOfRangeFloor for %d, got %v", floor, err)
		}
	}
	for _, s := range f.Snapshots() {
		if s.Outstanding != 0 {
			t.Errorf("Expected no stops after rejected requests, got %s", s)
		}
	}

	if err := f.SelectDestination(2, 8); err != nil {
		t.Fatalf("SelectDestination failed: %v", err)
	}
	s, _ := f.Snapshot(2)
	if s.Outstanding != 1 || s.State != StateMovingUp {
		t.Errorf("Expected car 2 moving up with one stop, got %s", s)
	}
}

func TestFleet_ApplyAssignments(t *testing.T) {
	f := newTestFleet(t, 1, 5)

	failed := f.ApplyAssignments([]Assignment{
		{CarID: 2, Pickup: Pickup{Floor: 7, Direction: DirDown}},
		{CarID: 9, Pickup: Pickup{Floor: 3, Direction: DirUp}},
	})
	if len(failed) != 1 || failed[0].CarID != 9 {
		t.Errorf("Expected assignment to car 9 to fail, got %v", failed)
	}

	s1, _ := f.Snapshot(1)
	s2, _ := f.Snapshot(2)
	if s1.Outstanding != 0 {
		t.Errorf("Expected car 1 untouched, got %s", s1)
	}
	if len(s2.Stops.PickupDown) != 1 || s2.Stops.PickupDown[0] != 7 {
		t.Errorf("Expected car 2 PickupDown [7], got %v", s2.Stops.PickupDown)
	}
}

func TestFleet_SnapshotUnknownCar(t *testing.T) {
	f := newTestFleet(t, 1)
	if _, err := f.Snapshot(2); !errors.Is(err, ErrUnknownCar) {
		t.Errorf("Expected ErrUnknownCar, got %v", err)
	}
}

func TestFleet_TickAll(t *testing.T) {
	f := newTestFleet(t, 1, 10)
	_ = f.SelectDestination(1, 3)
	_ = f.SelectDestination(2, 8)

	f.TickAll()

	snaps := f.Snapshots()
	if snaps[0].Floor != 2 || snaps[1].Floor != 9 {
		t.Errorf("Expected floors 2 and 9, got %d and %d", snaps[0].Floor, snaps[1].Floor)
	}
}
