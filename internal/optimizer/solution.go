// Package optimizer searches the space of candidate subsets with a genetic
// algorithm, maximizing a five-term fitness over coverage, equity,
// efficiency, diversity, and synergy.
package optimizer

import (
	"github.com/sells-group/foodaccess-cli/internal/geo"
)

// Member is one (location, assigned type) element of a solution, pre-tagged
// with the catalog constants fitness needs.
type Member struct {
	LocationID           string
	Center               geo.Point
	Type                 string
	Score                float64
	PopulationServed     float64
	SetupCost            float64
	OperatingCostMonthly float64
	ServiceRadiusM       float64
}

// Solution is a duplicate-free set of members. Solutions are immutable:
// crossover and mutation build new member slices instead of aliasing, so no
// two population entries ever share backing storage.
type Solution struct {
	members []Member
}

// NewSolution builds a solution from a copy of the given members.
func NewSolution(members ...Member) Solution {
	out := make([]Member, len(members))
	copy(out, members)
	return Solution{members: out}
}

// Members returns a copy of the member set.
func (s Solution) Members() []Member {
	out := make([]Member, len(s.members))
	copy(out, s.members)
	return out
}

// Len returns the number of members.
func (s Solution) Len() int { return len(s.members) }

func (s Solution) contains(locationID string) bool {
	for _, m := range s.members {
		if m.LocationID == locationID {
			return true
		}
	}
	return false
}

// withMember returns a new solution with m appended.
func (s Solution) withMember(m Member) Solution {
	out := make([]Member, len(s.members), len(s.members)+1)
	copy(out, s.members)
	return Solution{members: append(out, m)}
}

// withoutIndex returns a new solution with the member at i removed.
func (s Solution) withoutIndex(i int) Solution {
	out := make([]Member, 0, len(s.members)-1)
	out = append(out, s.members[:i]...)
	out = append(out, s.members[i+1:]...)
	return Solution{members: out}
}
