package elevator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSimulator_ServesRequests(t *testing.T) {
	sim, err := NewSimulator(testConfig(1, 10), nil)
	if err != nil {
		t.Fatalf("NewSimulator failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	if err := sim.RequestPickup(4, DirUp); err != nil {
		t.Fatalf("RequestPickup failed: %v", err)
	}
	if err := sim.SelectDestination(2, 7); err != nil {
		t.Fatalf("SelectDestination failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		settled := len(sim.Pending()) == 0
		for _, s := range sim.Snapshots() {
			if s.Outstanding != 0 || s.State != StateIdle {
				settled = false
			}
		}
		if settled {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Bank did not settle: %v pending %v", sim.Snapshots(), sim.Pending())
		}
		time.Sleep(2 * time.Millisecond)
	}

	s1, _ := sim.Snapshot(1)
	s2, _ := sim.Snapshot(2)
	if s1.Floor != 4 || s2.Floor != 7 {
		t.Errorf("Expected cars at 4 and 7, got %d and %d", s1.Floor, s2.Floor)
	}
	if len(sim.Tail(5)) != 5 {
		t.Errorf("Expected at least 5 events recorded, got %d", len(sim.Tail(5)))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSimulator_RejectsInvalidRequests(t *testing.T) {
	sim, err := NewSimulator(testConfig(3), nil)
	if err != nil {
		t.Fatalf("NewSimulator failed: %v", err)
	}

	if err := sim.SelectDestination(5, 2); !errors.Is(err, ErrUnknownCar) {
		t.Errorf("Expected ErrUnknownCar, got %v", err)
	}
	if err := sim.SelectDestination(1, 42); !errors.Is(err, ErrOutOfRangeFloor) {
		t.Errorf("Expected ErrOutOfRangeFloor, got %v", err)
	}
	if err := sim.RequestPickup(-1, DirUp); !errors.Is(err, ErrOutOfRangeFloor) {
		t.Errorf("Expected ErrOutOfRangeFloor, got %v", err)
	}

	s, _ := sim.Snapshot(1)
	if s.Outstanding != 0 || len(sim.Pending()) != 0 {
		t.Errorf("Expected no effect from rejected requests, got %s pending %v", s, sim.Pending())
	}

	tail := sim.Tail(10)
	rejected := 0
	for _, e := range tail {
		if e.Type == EventRequestRejected {
			rejected++
		}
	}
	if rejected != 3 {
		t.Errorf("Expected 3 rejection events, got %d", rejected)
	}
}
