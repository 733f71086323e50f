package elevator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// CarState is the motion state of a car. Exactly one per car at any time.
// CarState는 차량의 운행 상태입니다.
type CarState int

const (
	StateIdle       CarState = iota // 대기
	StateMovingUp                   // 상행
	StateMovingDown                 // 하행
	StateDoorOpen                   // 문 열림 (승하차)
)

func (s CarState) String() string {
	return [...]string{"Idle", "MovingUp", "MovingDown", "DoorOpen"}[s]
}

// CarConfig holds the per-car settings derived from the bank Config.
type CarConfig struct {
	Bounds       FloorRange
	TravelTime   time.Duration // 한 층 이동 시간
	DoorOpenTime time.Duration // 문 열림 유지 시간
	IdlePoll     time.Duration // 대기 상태 확인 주기
}

const defaultIdlePoll = 100 * time.Millisecond

// CarSnapshot is an immutable point-in-time copy of a car's public state.
// It is the only view the scheduler reads.
type CarSnapshot struct {
	ID          int
	Floor       int
	State       CarState
	Direction   Direction
	DoorOpen    bool
	Outstanding int
	Stops       StopSets
}

func (s CarSnapshot) String() string {
	join := func(floors []int, reverse bool) string {
		parts := make([]string, len(floors))
		for i, f := range floors {
			if reverse {
				parts[len(floors)-1-i] = fmt.Sprint(f)
			} else {
				parts[i] = fmt.Sprint(f)
			}
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("Car#%d F=%d %s Dir=%s | Onboard(↑:%s ↓:%s) Pickups(↑:%s ↓:%s)",
		s.ID, s.Floor, s.State, s.Direction,
		join(s.Stops.OnboardUp, false), join(s.Stops.OnboardDown, true),
		join(s.Stops.PickupUp, false), join(s.Stops.PickupDown, true))
}

// Car is the per-car controller: a state machine that owns one StopPlanner.
// All state lives behind mu; the scheduler's AddPickup and the car's own tick never
// interleave on the same planner. Sleeping never holds the lock.
// Car는 하나의 StopPlanner를 소유하는 상태 기계입니다.
type Car struct {
	mu  sync.Mutex
	id  int
	cfg CarConfig

	// --- State (가변 상태) ---
	state     CarState
	floor     int
	direction Direction
	planner   *StopPlanner

	// --- Loop Control ---
	wake chan struct{} // 외부에서 상태가 바뀌었을 때 Run 루프를 깨움

	// --- Observability ---
	logger *slog.Logger
	sink   EventSink
}

// NewCar creates an idle car at startFloor. A start floor outside the bounds fails fast.
func NewCar(id, startFloor int, cfg CarConfig, logger *slog.Logger, sink EventSink) (*Car, error) {
	if cfg.Bounds.Min > cfg.Bounds.Max {
		return nil, fmt.Errorf("%w: MinFloor (%d) > MaxFloor (%d)", ErrInvalidConfig, cfg.Bounds.Min, cfg.Bounds.Max)
	}
	if !cfg.Bounds.Contains(startFloor) {
		return nil, fmt.Errorf("%w: car %d start floor %d outside %d-%d",
			ErrInvalidConfig, id, startFloor, cfg.Bounds.Min, cfg.Bounds.Max)
	}
	if cfg.IdlePoll <= 0 {
		cfg.IdlePoll = defaultIdlePoll
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = discardSink{}
	}

	c := &Car{
		id:        id,
		cfg:       cfg,
		state:     StateIdle,
		floor:     startFloor,
		direction: DirNone,
		planner:   NewStopPlanner(cfg.Bounds),
		wake:      make(chan struct{}, 1),
		logger:    logger.With("car", id),
		sink:      sink,
	}

	c.logger.Info("Car initialized", "floor", startFloor, "min", cfg.Bounds.Min, "max", cfg.Bounds.Max)
	return c, nil
}

// ID returns the fixed car id.
func (c *Car) ID() int {
	return c.id
}

// State returns the current motion state safely.
func (c *Car) State() CarState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Floor returns the current floor safely.
func (c *Car) Floor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.floor
}

// Snapshot copies the car's public state out under the lock.
func (c *Car) Snapshot() CarSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	stops, err := c.planner.Sets()
	if err != nil {
		c.logger.Error("Snapshot without stop sets", "error", err)
	}
	return CarSnapshot{
		ID:          c.id,
		Floor:       c.floor,
		State:       c.state,
		Direction:   c.direction,
		DoorOpen:    c.state == StateDoorOpen,
		Outstanding: c.planner.Outstanding(),
		Stops:       stops,
	}
}

// Assign routes a scheduler assignment into this car's planner.
// An assignment addressed to another car is a no-op.
func (c *Car) Assign(a Assignment) error {
	if a.CarID != c.id {
		c.logger.Warn("Assignment ignored: wrong car", "target", a.CarID, "pickup", a.Pickup)
		return fmt.Errorf("car %d got assignment for car %d: %w", c.id, a.CarID, ErrMismatchedAssignment)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.planner.AddPickup(a.Pickup.Floor, a.Pickup.Direction)
	c.logger.Info("Pickup assigned", "floor", a.Pickup.Floor, "dir", a.Pickup.Direction)
	c.publish(EventPickupAssigned, func(e *Event) { e.Floor, e.Direction = a.Pickup.Floor, a.Pickup.Direction })
	return nil
}

// SelectDestination registers an onboard destination. An idle car decides immediately
// instead of waiting for its next tick.
func (c *Car) SelectDestination(floor int) error {
	if !c.cfg.Bounds.Contains(floor) {
		return fmt.Errorf("car %d destination %d (range %d-%d): %w",
			c.id, floor, c.cfg.Bounds.Min, c.cfg.Bounds.Max, ErrOutOfRangeFloor)
	}

	c.mu.Lock()
	c.planner.AddOnboard(floor, c.floor)
	c.logger.Info("Destination selected", "floor", floor)
	c.publish(EventDestinationSelected, func(e *Event) { e.Floor = floor })

	started := false
	if c.state == StateIdle {
		c.tickIdle()
		started = c.state != StateIdle
	}
	c.mu.Unlock()

	if started {
		c.notify()
	}
	return nil
}

// Tick advances the car by one discrete step and returns the resulting state.
// The caller is responsible for waiting the state's duration before the next tick.
func (c *Car) Tick() CarState {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		c.tickIdle()
	case StateMovingUp:
		c.tickMoving(DirUp)
	case StateMovingDown:
		c.tickMoving(DirDown)
	case StateDoorOpen:
		c.tickDoorOpen()
	}
	return c.state
}

// tickIdle: open here if anything is waiting at this floor, else pick a direction.
func (c *Car) tickIdle() {
	if c.planner.ShouldStopHere(c.floor, DirNone) {
		c.openDoors()
		return
	}
	c.depart(c.planner.NextDirection(DirNone, c.floor))
}

// tickMoving advances one floor in dir, then decides whether to stop, continue or reverse.
func (c *Car) tickMoving(dir Direction) {
	next := c.floor + 1
	if dir == DirDown {
		next = c.floor - 1
	}
	c.setFloor(c.cfg.Bounds.Clamp(next))

	if c.shouldStop(dir) {
		c.openDoors()
		return
	}
	c.depart(c.planner.NextDirection(dir, c.floor))
}

// shouldStop also serves an opposite-direction hall call at the arrival floor when the car
// has nothing further ahead; otherwise it would reverse straight past the caller.
func (c *Car) shouldStop(dir Direction) bool {
	if c.planner.ShouldStopHere(c.floor, dir) {
		return true
	}
	return c.planner.NextDirection(dir, c.floor) != dir && c.planner.ShouldStopHere(c.floor, DirNone)
}

// tickDoorOpen ends the dwell: clear this floor, then continue from the pre-clear direction.
func (c *Car) tickDoorOpen() {
	c.planner.ClearAt(c.floor)
	c.logger.Debug("Doors closed", "floor", c.floor)
	c.publish(EventDoorClosed, nil)
	c.depart(c.planner.NextDirection(c.direction, c.floor))
}

func (c *Car) openDoors() {
	c.logger.Info("Arrived at floor", "floor", c.floor, "dir", c.direction)
	c.setState(StateDoorOpen)
	c.publish(EventDoorOpened, nil)
}

// depart enters the moving state for dir, or Idle when dir is None or the car is already
// at the boundary floor in that direction.
func (c *Car) depart(dir Direction) {
	switch {
	case dir == DirUp && c.floor < c.cfg.Bounds.Max:
		c.setDirection(DirUp)
		c.setState(StateMovingUp)
	case dir == DirDown && c.floor > c.cfg.Bounds.Min:
		c.setDirection(DirDown)
		c.setState(StateMovingDown)
	default:
		if c.state != StateIdle {
			c.logger.Info("💤 Idle", "floor", c.floor)
		}
		c.setDirection(DirNone)
		c.setState(StateIdle)
	}
}

// setFloor updates the floor and publishes an event.
func (c *Car) setFloor(f int) {
	if c.floor != f {
		c.floor = f
		c.logger.Debug("Moved", "floor", f, "dir", c.direction)
		c.publish(EventFloorChange, nil)
	}
}

// setDirection updates the direction and publishes an event.
func (c *Car) setDirection(d Direction) {
	if c.direction != d {
		if d != DirNone {
			c.logger.Info("🧭 Direction Changed", "from", c.direction, "to", d, "floor", c.floor)
		}
		c.direction = d
		c.publish(EventDirectionChange, nil)
	}
}

// setState updates the state and publishes an event.
func (c *Car) setState(s CarState) {
	if c.state != s {
		c.state = s
		c.publish(EventStateChange, nil)
	}
}

// publish must be called with mu held.
func (c *Car) publish(t EventType, fill func(*Event)) {
	e := Event{
		Type:      t,
		CarID:     c.id,
		Floor:     c.floor,
		Direction: c.direction,
		State:     c.state,
		Timestamp: time.Now(),
	}
	if fill != nil {
		fill(&e)
	}
	c.sink.Publish(e)
}

func (c *Car) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// waitFor returns how long the car stays in s before its next tick.
func (c *Car) waitFor(s CarState) time.Duration {
	switch s {
	case StateMovingUp, StateMovingDown:
		return c.cfg.TravelTime
	case StateDoorOpen:
		return c.cfg.DoorOpenTime
	}
	return c.cfg.IdlePoll
}

// Run executes the car's motion cycle until ctx is cancelled.
// Each state is held for its configured duration (travel per floor, door dwell, idle poll),
// then the car ticks once. A wake-up from SelectDestination restarts the wait for the new state.
// Run은 차량의 운행 루프를 실행합니다.
func (c *Car) Run(ctx context.Context) error {
	c.logger.Info("Car motion cycle started")

	timer := time.NewTimer(c.waitFor(c.State()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Car motion cycle stopping (Context Cancelled)")
			return ctx.Err()

		case <-c.wake:
			resetTimer(timer, c.waitFor(c.State()))

		case <-timer.C:
			state := c.Tick()
			timer.Reset(c.waitFor(state))
		}
	}
}

// resetTimer stops, drains and re-arms t.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
