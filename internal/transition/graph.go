// Package transition governs company and application status changes and the
// side effects they trigger.
package transition

// Graph maps a state to the states that may follow it. A nil Graph allows every
// transition, including a state to itself.
type Graph[S ~string] map[S][]S

// Allows is the single predicate consulted before any status change is planned.
func (g Graph[S]) Allows(from, to S) bool {
	if g == nil {
		return true
	}
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}
