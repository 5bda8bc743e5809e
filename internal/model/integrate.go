package model

// IntegrateCloth applies the position-form (Verlet-style) update: with the
// network output interpreted as acceleration in position-difference units
// and a unit time step,
//
//	next = 2*cur + accel - prev
func IntegrateCloth(cur, prev, accel [][]float64) [][]float64 {
	next := make([][]float64, len(cur))
	for i := range cur {
		row := make([]float64, len(cur[i]))
		for j := range row {
			row[j] = 2*cur[i][j] + accel[i][j] - prev[i][j]
		}
		next[i] = row
	}
	return next
}

// IntegrateVelocity applies the velocity-form (explicit Euler) update:
//
//	next = cur + velocity
func IntegrateVelocity(cur, velocity [][]float64) [][]float64 {
	next := make([][]float64, len(cur))
	for i := range cur {
		row := make([]float64, len(cur[i]))
		for j := range row {
			row[j] = cur[i][j] + velocity[i][j]
		}
		next[i] = row
	}
	return next
}
