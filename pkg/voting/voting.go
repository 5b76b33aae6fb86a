package voting

import (
	"sort"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

// CastVote moves memberID's single vote to planID and recomputes the winner.
// Member and plan ids are assumed valid; callers check them first.
func CastVote(votes *models.PlanVotes, memberID, planID string) {
	ensureMaps(votes)

	if prev, ok := votes.Voters[memberID]; ok && prev != "" {
		votes.Tallies[prev] = max(0, votes.Tallies[prev]-1)
	}
	votes.Voters[memberID] = planID
	votes.Tallies[planID]++
	votes.WinnerPlanID = ComputeWinner(votes)
}

// ComputeWinner returns the plan with the most votes, or "" when nobody voted.
// Ties keep the previous winner if it is still tied, otherwise the
// lexicographically smallest plan id wins.
func ComputeWinner(votes *models.PlanVotes) string {
	if votes == nil || len(votes.Tallies) == 0 {
		return ""
	}

	best := -1
	var tied []string
	for planID, n := range votes.Tallies {
		switch {
		case n > best:
			best = n
			tied = []string{planID}
		case n == best:
			tied = append(tied, planID)
		}
	}

	if len(tied) == 1 {
		return tied[0]
	}
	for _, id := range tied {
		if id == votes.WinnerPlanID {
			return id
		}
	}
	sort.Strings(tied)
	return tied[0]
}

// Refresh fills nil maps and recomputes the winner of a stored record
func Refresh(votes *models.PlanVotes) *models.PlanVotes {
	if votes == nil {
		return models.NewPlanVotes()
	}
	ensureMaps(votes)
	votes.WinnerPlanID = ComputeWinner(votes)
	return votes
}

func ensureMaps(votes *models.PlanVotes) {
	if votes.Tallies == nil {
		votes.Tallies = make(map[string]int)
	}
	if votes.Voters == nil {
		votes.Voters = make(map[string]string)
	}
}
