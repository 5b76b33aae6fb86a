package plans

import (
	"errors"
	"fmt"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

var (
	ErrNoPlans       = errors.New("at least one plan package is required")
	ErrDayNotFound   = errors.New("day not found")
	ErrSlotNotFound  = errors.New("slot not found")
	ErrPlanNotFound  = errors.New("plan not found")
	ErrMissingPlanID = errors.New("plan id is required")
)

// Stats summarizes a validated set of plan packages
type Stats struct {
	PlanCount int `json:"plan_count"`
	DayCount  int `json:"day_count"`
	SlotCount int `json:"slot_count"`
}

// Validate checks that plan ids are present and unique and that slot ids
// are unique within each plan
func Validate(packages []models.PlanPackage) (Stats, error) {
	if len(packages) == 0 {
		return Stats{}, ErrNoPlans
	}

	var stats Stats
	planIDs := make(map[string]bool)
	for _, p := range packages {
		if p.ID == "" {
			return Stats{}, ErrMissingPlanID
		}
		if planIDs[p.ID] {
			return Stats{}, fmt.Errorf("duplicate plan ID: %s", p.ID)
		}
		planIDs[p.ID] = true

		slotIDs := make(map[string]bool)
		for _, d := range p.Days {
			for _, s := range d.Slots {
				if s.ID == "" {
					continue
				}
				if slotIDs[s.ID] {
					return Stats{}, fmt.Errorf("duplicate slot ID %s in plan %s", s.ID, p.ID)
				}
				slotIDs[s.ID] = true
			}
		}
		stats.PlanCount++
		stats.DayCount += len(p.Days)
		stats.SlotCount += p.SlotCount()
	}
	return stats, nil
}

// Find returns the plan with the given id
func Find(packages []models.PlanPackage, planID string) (int, error) {
	for i, p := range packages {
		if p.ID == planID {
			return i, nil
		}
	}
	return -1, ErrPlanNotFound
}

// Update carries the optional fields of a plan merge-update
type Update struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	ThemeEmphasis []string         `json:"themeEmphasis"`
	Days          []models.DayPlan `json:"days"`
}

// Merge applies an update to a plan. Top-level fields replace; each
// updated day replaces the slots of the existing day with the same number,
// or is taken as-is when no such day exists. The fit score is dropped so
// callers rescore.
func Merge(original models.PlanPackage, u Update) models.PlanPackage {
	merged := original
	merged.FitScore = nil
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.ThemeEmphasis != nil {
		merged.ThemeEmphasis = u.ThemeEmphasis
	}
	if u.Days == nil {
		return merged
	}

	days := make([]models.DayPlan, 0, len(u.Days))
	for _, upd := range u.Days {
		day := upd
		for _, existing := range original.Days {
			if existing.Day != upd.Day {
				continue
			}
			day = existing
			if upd.Date != "" {
				day.Date = upd.Date
			}
			if upd.Slots != nil {
				day.Slots = upd.Slots
			}
			break
		}
		days = append(days, day)
	}
	merged.Days = days
	return merged
}

// FindSlot locates a slot by day number and slot id
func FindSlot(plan models.PlanPackage, day int, slotID string) (dayIdx, slotIdx int, err error) {
	for i, d := range plan.Days {
		if d.Day != day {
			continue
		}
		for j, s := range d.Slots {
			if s.ID == slotID {
				return i, j, nil
			}
		}
		return i, -1, ErrSlotNotFound
	}
	return -1, -1, ErrDayNotFound
}

// ReplaceSlot swaps a slot in place, keeping the old slot's id, time,
// duration and location where the replacement leaves them empty
func ReplaceSlot(plan *models.PlanPackage, day int, slotID string, replacement models.ActivitySlot) error {
	di, si, err := FindSlot(*plan, day, slotID)
	if err != nil {
		return err
	}
	plan.Days[di].Slots[si] = InheritSlot(plan.Days[di].Slots[si], replacement)
	return nil
}

// InheritSlot fills the replacement's empty scheduling fields from the original
func InheritSlot(original, replacement models.ActivitySlot) models.ActivitySlot {
	if replacement.ID == "" {
		replacement.ID = original.ID
	}
	if replacement.Time == "" {
		replacement.Time = original.Time
	}
	if replacement.Duration == 0 {
		replacement.Duration = original.Duration
	}
	if replacement.Location == "" {
		replacement.Location = original.Location
	}
	if replacement.Tags == nil {
		replacement.Tags = []string{}
	}
	return replacement
}
