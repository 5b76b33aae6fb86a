package mediator

import (
	"fmt"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

// DetectConflicts scans profiles for budget, wake-time, instagram,
// dislike and constraint disagreements. Every applicable rule emits.
//
// Spread-based items (budget, wake, instagram) list every profile's member,
// not only the outliers.
func DetectConflicts(profiles []models.PreferenceProfile) []models.ConflictItem {
	conflicts := []models.ConflictItem{}
	if len(profiles) == 0 {
		return conflicts
	}

	everyone := make([]string, 0, len(profiles))
	for _, p := range profiles {
		everyone = append(everyone, p.MemberID)
	}

	budget := spread(profiles, func(p models.PreferenceProfile) int { return p.BudgetScore })
	switch {
	case budget >= 2:
		conflicts = append(conflicts, spreadItem(models.ConflictBudget, models.SeverityHigh,
			"Wide budget gap between travelers", everyone))
	case budget == 1:
		conflicts = append(conflicts, spreadItem(models.ConflictBudget, models.SeverityMedium,
			"Moderate budget differences", everyone))
	}

	wake := spread(profiles, func(p models.PreferenceProfile) int { return p.WakeMinutes })
	switch {
	case wake > 120:
		conflicts = append(conflicts, spreadItem(models.ConflictWake, models.SeverityHigh,
			"Large wake-up time gap", everyone))
	case wake > 60:
		conflicts = append(conflicts, spreadItem(models.ConflictWake, models.SeverityMedium,
			"Different preferred wake-up times", everyone))
	}

	insta := spread(profiles, func(p models.PreferenceProfile) int { return p.InstagramImportance })
	if insta >= 3 {
		conflicts = append(conflicts, spreadItem(models.ConflictInstagram, models.SeverityMedium,
			"Some travelers care much more about photogenic spots", everyone))
	}

	dislikes := newTally()
	constraints := newTally()
	for _, p := range profiles {
		for _, d := range distinctFolded(p.Dislikes) {
			dislikes.add(d, p.MemberID)
		}
		for _, c := range distinctFolded(p.Constraints) {
			constraints.add(c, p.MemberID)
		}
	}
	for _, d := range dislikes.shared() {
		conflicts = append(conflicts, models.ConflictItem{
			Type:            models.ConflictDislike,
			Severity:        models.SeverityLow,
			Description:     fmt.Sprintf("Multiple travelers want to avoid %s", d),
			MembersInvolved: dislikes.members[d],
		})
	}
	for _, c := range constraints.shared() {
		conflicts = append(conflicts, models.ConflictItem{
			Type:            models.ConflictConstraint,
			Severity:        models.SeverityMedium,
			Description:     fmt.Sprintf("Shared constraint: %s", c),
			MembersInvolved: constraints.members[c],
		})
	}

	return conflicts
}

// BuildConflictReport runs aggregation, consensus and conflict detection
func BuildConflictReport(members []models.Member) models.ConflictReport {
	profiles := BuildProfiles(members)
	return models.ConflictReport{
		Profiles:  profiles,
		Consensus: DeriveConsensus(profiles),
		Conflicts: DetectConflicts(profiles),
	}
}

func spread(profiles []models.PreferenceProfile, value func(models.PreferenceProfile) int) int {
	lo, hi := value(profiles[0]), value(profiles[0])
	for _, p := range profiles[1:] {
		v := value(p)
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return hi - lo
}

func spreadItem(kind models.ConflictType, sev models.Severity, desc string, members []string) models.ConflictItem {
	return models.ConflictItem{
		Type:            kind,
		Severity:        sev,
		Description:     desc,
		MembersInvolved: append([]string(nil), members...),
	}
}
