package mediator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

const minutesInDay = 24 * 60

// DefaultWakeUpTime is assumed when a survey leaves the wake-up time empty
const DefaultWakeUpTime = "08:00"

// DefaultInstagramImportance is assumed when a survey leaves it unset
const DefaultInstagramImportance = 3

// BudgetToScore maps a budget level onto 1..3, defaulting to medium
func BudgetToScore(level models.BudgetLevel) int {
	switch level {
	case models.BudgetLow:
		return 1
	case models.BudgetMedium:
		return 2
	case models.BudgetHigh:
		return 3
	default:
		return 2
	}
}

// ScoreToBudget maps a budget score back to a level
func ScoreToBudget(score int) models.BudgetLevel {
	if score <= 1 {
		return models.BudgetLow
	}
	if score >= 3 {
		return models.BudgetHigh
	}
	return models.BudgetMedium
}

// TimeToMinutes parses "HH:MM" into minutes since midnight.
// Hours wrap at 24 and minutes at 60; unparsable parts count as zero.
func TimeToMinutes(hhmm string) int {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(parts[1])
	}
	h %= 24
	m %= 60
	if h < 0 {
		h += 24
	}
	if m < 0 {
		m += 60
	}
	return h*60 + m
}

// ValidTime reports whether s is a clock time such as "07:30" or "7:30"
func ValidTime(s string) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(s))
	return err == nil
}

// MinutesToTime formats minutes since midnight as "HH:MM", clamped to the day
func MinutesToTime(total int) string {
	minutes := max(0, min(total, minutesInDay-1))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// BuildProfiles turns every member with a survey into a preference profile.
// Members without a survey are skipped.
func BuildProfiles(members []models.Member) []models.PreferenceProfile {
	profiles := make([]models.PreferenceProfile, 0, len(members))
	for _, m := range members {
		if m.Survey == nil {
			continue
		}
		profiles = append(profiles, profileFor(m))
	}
	return profiles
}

func profileFor(m models.Member) models.PreferenceProfile {
	s := m.Survey
	wake := s.WakeUpTime
	if wake == "" {
		wake = DefaultWakeUpTime
	}
	insta := s.InstagramImportance
	if insta == 0 {
		insta = DefaultInstagramImportance
	}
	return models.PreferenceProfile{
		MemberID:            m.ID,
		Nickname:            m.Nickname,
		BudgetScore:         BudgetToScore(s.BudgetLevel),
		WakeMinutes:         TimeToMinutes(wake),
		Emotions:            orEmpty(s.Emotions),
		Dislikes:            orEmpty(s.Dislikes),
		Constraints:         orEmpty(s.Constraints),
		InstagramImportance: insta,
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
