package elevator

import (
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"
)

// StopSets holds the four ordered stop sets of one car. Every slice is sorted ascending
// and free of duplicates.
// StopSets는 한 차량의 네 가지 정렬된 정지 집합입니다.
type StopSets struct {
	OnboardUp   []int // 탑승객 목적지 (입력 시점 기준 위쪽)
	OnboardDown []int // 탑승객 목적지 (입력 시점 기준 아래쪽)
	PickupUp    []int // 배정된 상행 홀 호출
	PickupDown  []int // 배정된 하행 홀 호출
}

// Len returns the total number of outstanding stops.
func (s StopSets) Len() int {
	return len(s.OnboardUp) + len(s.OnboardDown) + len(s.PickupUp) + len(s.PickupDown)
}

// StopPlanner owns the committed stops of a single car and answers the per-floor
// questions the car asks while moving.
// No mutex, No channel, No time. The owning Car serializes access.
type StopPlanner struct {
	bounds FloorRange
	sets   StopSets
}

// NewStopPlanner creates an empty planner for the given floor range.
func NewStopPlanner(bounds FloorRange) *StopPlanner {
	return &StopPlanner{bounds: bounds}
}

// AddPickup registers an assigned hall call. Out-of-range floors and direction None are dropped.
func (p *StopPlanner) AddPickup(floor int, dir Direction) {
	if !p.bounds.Contains(floor) {
		return
	}
	switch dir {
	case DirUp:
		p.sets.PickupUp = insertFloor(p.sets.PickupUp, floor)
	case DirDown:
		p.sets.PickupDown = insertFloor(p.sets.PickupDown, floor)
	}
}

// AddOnboard registers a destination selected inside the car. The set is chosen relative to
// currentFloor at insertion time only; a destination equal to currentFloor goes to OnboardUp.
func (p *StopPlanner) AddOnboard(floor, currentFloor int) {
	if !p.bounds.Contains(floor) {
		return
	}
	if floor < currentFloor {
		p.sets.OnboardDown = insertFloor(p.sets.OnboardDown, floor)
		return
	}
	p.sets.OnboardUp = insertFloor(p.sets.OnboardUp, floor)
}

// ClearAt removes floor from all four sets.
func (p *StopPlanner) ClearAt(floor int) {
	p.sets.OnboardUp = removeFloor(p.sets.OnboardUp, floor)
	p.sets.OnboardDown = removeFloor(p.sets.OnboardDown, floor)
	p.sets.PickupUp = removeFloor(p.sets.PickupUp, floor)
	p.sets.PickupDown = removeFloor(p.sets.PickupDown, floor)
}

// ShouldStopHere reports whether the car must open its doors at floor.
// Onboard stops are unconditional. Pickups must match the moving direction, except when
// moving is DirNone: an idle car is not committed yet and honors either label.
func (p *StopPlanner) ShouldStopHere(floor int, moving Direction) bool {
	if hasFloor(p.sets.OnboardUp, floor) || hasFloor(p.sets.OnboardDown, floor) {
		return true
	}
	switch moving {
	case DirUp:
		return hasFloor(p.sets.PickupUp, floor)
	case DirDown:
		return hasFloor(p.sets.PickupDown, floor)
	default:
		return hasFloor(p.sets.PickupUp, floor) || hasFloor(p.sets.PickupDown, floor)
	}
}

// NextDirection implements direction commitment.
//
// A car moving Up stays Up while an onboard destination lies above it or an up pickup lies
// at or above it (Down is symmetric). Otherwise it heads toward the nearest remaining stop
// of either kind, Up winning exact ties. With nothing left away from floor it returns DirNone.
func (p *StopPlanner) NextDirection(current Direction, floor int) Direction {
	switch current {
	case DirUp:
		if anyAbove(p.sets.OnboardUp, floor) || anyAtOrAbove(p.sets.PickupUp, floor) {
			return DirUp
		}
	case DirDown:
		if anyBelow(p.sets.OnboardDown, floor) || anyAtOrBelow(p.sets.PickupDown, floor) {
			return DirDown
		}
	}

	all := [][]int{p.sets.OnboardUp, p.sets.OnboardDown, p.sets.PickupUp, p.sets.PickupDown}
	above, okAbove := lowestAtOrAbove(floor+1, all...)
	below, okBelow := highestAtOrBelow(floor-1, all...)
	switch {
	case okAbove && okBelow:
		if above-floor <= floor-below {
			return DirUp
		}
		return DirDown
	case okAbove:
		return DirUp
	case okBelow:
		return DirDown
	}
	return DirNone
}

// NearestAbove returns the smallest tracked floor >= floor. Onboard destinations take
// precedence over pickups.
func (p *StopPlanner) NearestAbove(floor int) (int, bool) {
	if f, ok := lowestAtOrAbove(floor, p.sets.OnboardUp, p.sets.OnboardDown); ok {
		return f, true
	}
	return lowestAtOrAbove(floor, p.sets.PickupUp, p.sets.PickupDown)
}

// NearestBelow returns the largest tracked floor <= floor. Onboard destinations take
// precedence over pickups.
func (p *StopPlanner) NearestBelow(floor int) (int, bool) {
	if f, ok := highestAtOrBelow(floor, p.sets.OnboardUp, p.sets.OnboardDown); ok {
		return f, true
	}
	return highestAtOrBelow(floor, p.sets.PickupUp, p.sets.PickupDown)
}

// Outstanding returns the number of committed stops (onboard + assigned pickups).
func (p *StopPlanner) Outstanding() int {
	return p.sets.Len()
}

// Sets returns a deep copy of the stop sets. The copy never aliases planner storage;
// on error the result is empty.
func (p *StopPlanner) Sets() (StopSets, error) {
	var out StopSets
	if err := deepcopy.Copy(&out, &p.sets); err != nil {
		return StopSets{}, fmt.Errorf("copy stop sets: %w", err)
	}
	return out, nil
}

// --- sorted set helpers ---

func insertFloor(set []int, floor int) []int {
	i, found := slices.BinarySearch(set, floor)
	if found {
		return set
	}
	return slices.Insert(set, i, floor)
}

func removeFloor(set []int, floor int) []int {
	i, found := slices.BinarySearch(set, floor)
	if !found {
		return set
	}
	return slices.Delete(set, i, i+1)
}

func hasFloor(set []int, floor int) bool {
	_, found := slices.BinarySearch(set, floor)
	return found
}

func anyAbove(set []int, floor int) bool {
	return len(set) > 0 && set[len(set)-1] > floor
}

func anyBelow(set []int, floor int) bool {
	return len(set) > 0 && set[0] < floor
}

func anyAtOrAbove(set []int, floor int) bool {
	return len(set) > 0 && set[len(set)-1] >= floor
}

func anyAtOrBelow(set []int, floor int) bool {
	return len(set) > 0 && set[0] <= floor
}

func lowestAtOrAbove(floor int, sets ...[]int) (int, bool) {
	best, found := 0, false
	for _, set := range sets {
		i, _ := slices.BinarySearch(set, floor)
		if i < len(set) && (!found || set[i] < best) {
			best, found = set[i], true
		}
	}
	return best, found
}

func highestAtOrBelow(floor int, sets ...[]int) (int, bool) {
	best, found := 0, false
	for _, set := range sets {
		i, hit := slices.BinarySearch(set, floor)
		if hit {
			i++
		}
		if i > 0 && (!found || set[i-1] > best) {
			best, found = set[i-1], true
		}
	}
	return best, found
}
