// Package fare prices journeys by how many line positions they span
package fare

import "fmt"

// UnitFare is the price of travelling one position along the line
const UnitFare = 5.00

// Distance is the topological distance between two station orders
func Distance(fromOrder int, toOrder int) int {
	if toOrder > fromOrder {
		return toOrder - fromOrder
	}

	return fromOrder - toOrder
}

// Price panics on a negative distance, callers always pass the result of Distance
func Price(distance int) float64 {
	if distance < 0 {
		panic(fmt.Sprintf("fare: negative distance %d", distance))
	}

	return float64(distance) * UnitFare
}
