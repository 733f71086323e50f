package elevator

import (
	"errors"
	"fmt"
)

// --- Domain Entities & Value Objects ---

// Errors surfaced at the request boundary. None of them ever reach a car's stop state.
// 경계에서 반환되는 오류입니다. 어떤 오류도 차량의 정지 상태를 변경하지 않습니다.
var (
	ErrOutOfRangeFloor      = errors.New("floor out of range")
	ErrUnknownCar           = errors.New("unknown car")
	ErrMismatchedAssignment = errors.New("assignment delivered to wrong car")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInvalidConfig        = errors.New("invalid config")
)

// Direction indicates the vertical movement vector.
// Direction은 수직 이동 벡터를 나타냅니다.
type Direction string

const (
	DirUp   Direction = "Up"
	DirDown Direction = "Down"
	DirNone Direction = "None"
)

// Arrow returns the compact glyph used in snapshots and hall call listings.
func (d Direction) Arrow() string {
	switch d {
	case DirUp:
		return "↑"
	case DirDown:
		return "↓"
	}
	return "-"
}

// FloorRange is the inclusive [Min, Max] span every floor value must satisfy.
// FloorRange는 모든 층 값이 만족해야 하는 닫힌 구간입니다.
type FloorRange struct {
	Min int
	Max int
}

// Contains reports whether floor lies inside the range.
func (r FloorRange) Contains(floor int) bool {
	return floor >= r.Min && floor <= r.Max
}

// Clamp pins floor to the range.
func (r FloorRange) Clamp(floor int) int {
	if floor < r.Min {
		return r.Min
	}
	if floor > r.Max {
		return r.Max
	}
	return floor
}

// CheckPickup validates a hall call. An Up call cannot originate at the top floor and
// a Down call cannot originate at the bottom floor.
func (r FloorRange) CheckPickup(floor int, dir Direction) error {
	if dir != DirUp && dir != DirDown {
		return fmt.Errorf("hall call at floor %d: %w %q", floor, ErrInvalidDirection, dir)
	}
	if !r.Contains(floor) {
		return fmt.Errorf("hall call at floor %d (range %d-%d): %w", floor, r.Min, r.Max, ErrOutOfRangeFloor)
	}
	if dir == DirUp && floor == r.Max {
		return fmt.Errorf("up call at top floor %d: %w", floor, ErrOutOfRangeFloor)
	}
	if dir == DirDown && floor == r.Min {
		return fmt.Errorf("down call at bottom floor %d: %w", floor, ErrOutOfRangeFloor)
	}
	return nil
}

// Pickup is a hall call: a floor plus the direction the waiting passenger wants to travel.
// Pickup은 홀 호출입니다. 방향은 승객이 가려는 방향이며, 차량의 접근 방향이 아닙니다.
type Pickup struct {
	Floor     int
	Direction Direction
}

func (p Pickup) String() string {
	return fmt.Sprintf("%d%s", p.Floor, p.Direction.Arrow())
}

// Assignment binds a pickup to a car. Produced by Assign, consumed once by the fleet.
type Assignment struct {
	CarID  int
	Pickup Pickup
}
