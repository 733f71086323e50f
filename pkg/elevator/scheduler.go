package elevator

// Tier weights for Score. A car already sweeping toward the pickup in the requested
// direction beats an idle car, which beats a car moving the wrong way.
const (
	sameCorridorDistanceWeight = 10
	sameCorridorLoadWeight     = 1
	idleDistanceWeight         = 20
	idleLoadWeight             = 2
	otherDistanceWeight        = 40
	otherLoadWeight            = 3
)

// Score rates how well car fits pickup p. Lower is better; every car gets a finite score.
func Score(car CarSnapshot, p Pickup) int {
	distance := car.Floor - p.Floor
	if distance < 0 {
		distance = -distance
	}
	load := car.Outstanding

	switch {
	case car.Direction == p.Direction && approaching(car, p):
		return distance*sameCorridorDistanceWeight + load*sameCorridorLoadWeight
	case car.Direction == DirNone:
		return distance*idleDistanceWeight + load*idleLoadWeight
	default:
		return distance*otherDistanceWeight + load*otherLoadWeight
	}
}

// approaching reports whether the car can reach the pickup floor without reversing.
func approaching(car CarSnapshot, p Pickup) bool {
	switch car.Direction {
	case DirUp:
		return car.Floor <= p.Floor
	case DirDown:
		return car.Floor >= p.Floor
	}
	return false
}

// Assign binds every pending pickup to the car with the lowest Score. Ties go to the
// first car in iteration order. Pickups are scored independently against the same
// snapshots; Assign is stateless between calls.
// With no cars it returns nil.
func Assign(pending []Pickup, cars []CarSnapshot) []Assignment {
	if len(cars) == 0 || len(pending) == 0 {
		return nil
	}

	assignments := make([]Assignment, 0, len(pending))
	for _, p := range pending {
		best := 0
		bestScore := Score(cars[0], p)
		for i := 1; i < len(cars); i++ {
			if s := Score(cars[i], p); s < bestScore {
				best, bestScore = i, s
			}
		}
		assignments = append(assignments, Assignment{CarID: cars[best].ID, Pickup: p})
	}
	return assignments
}
