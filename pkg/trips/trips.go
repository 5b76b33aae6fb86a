package trips

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

var (
	ErrMembersNotReady = errors.New("not all members are ready")
	ErrInvalidDay      = errors.New("day is out of range")
	ErrTripCompleted   = errors.New("trip is already completed")
)

// DefaultHighlights are used when the group leaves no feedback
var DefaultHighlights = []string{"즐거운 추억을 남겼어요!", "다음 여행도 함께해요!"}

// AllReady reports whether the room has members and every one is ready
func AllReady(members []models.Member) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !m.IsReady {
			return false
		}
	}
	return true
}

// Start creates an active trip for the chosen plan
func Start(room models.Room, plan models.PlanPackage, members []models.Member, report models.ConflictReport) (models.Trip, error) {
	if !AllReady(members) {
		return models.Trip{}, ErrMembersNotReady
	}
	return models.Trip{
		ID:             uuid.NewString(),
		RoomID:         room.ID,
		Plan:           plan,
		Status:         models.TripActive,
		StartDate:      room.DateRange.Start,
		CurrentDay:     1,
		ConflictReport: &report,
		Photos:         []string{},
	}, nil
}

// SetDay moves the trip to the given day of its plan
func SetDay(trip *models.Trip, day int) error {
	if trip.Status == models.TripCompleted {
		return ErrTripCompleted
	}
	if day < 1 || day > len(trip.Plan.Days) {
		return ErrInvalidDay
	}
	trip.CurrentDay = day
	return nil
}

// AddPhotos appends photo urls, skipping blanks and duplicates
func AddPhotos(trip *models.Trip, urls ...string) {
	seen := make(map[string]struct{}, len(trip.Photos))
	for _, p := range trip.Photos {
		seen[p] = struct{}{}
	}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		trip.Photos = append(trip.Photos, u)
	}
	if trip.Photos == nil {
		trip.Photos = []string{}
	}
}

// Completion is what the group submits when a trip ends
type Completion struct {
	DayEmotions []string `json:"dayEmotions"`
	Photos      []string `json:"photos"`
	Feedback    string   `json:"feedback"`
}

// Complete marks the trip completed and attaches its report
func Complete(trip *models.Trip, c Completion) models.TripReport {
	AddPhotos(trip, c.Photos...)
	report := BuildReport(*trip, c)
	trip.Status = models.TripCompleted
	trip.Report = &report
	return report
}

// BuildReport summarizes a trip without any generated text: feedback and
// day emotions become highlights, and each day gets a card of its slots.
func BuildReport(trip models.Trip, c Completion) models.TripReport {
	highlights := []string{}
	if fb := strings.TrimSpace(c.Feedback); fb != "" {
		highlights = append(highlights, fb)
	}
	for i, e := range c.DayEmotions {
		if e = strings.TrimSpace(e); e != "" {
			highlights = append(highlights, fmt.Sprintf("Day %d: %s", i+1, e))
		}
	}
	if len(highlights) == 0 {
		highlights = append(highlights, DefaultHighlights...)
	}

	cards := make([]models.TripReportCard, 0, len(trip.Plan.Days))
	for _, day := range trip.Plan.Days {
		titles := make([]string, 0, len(day.Slots))
		for _, s := range day.Slots {
			titles = append(titles, s.Title)
		}
		cards = append(cards, models.TripReportCard{
			Title: fmt.Sprintf("Day %d 리뷰", day.Day),
			Body:  strings.Join(titles, ", "),
			Tags:  []string{"auto"},
			Day:   day.Day,
		})
	}

	summary := "Trip completed"
	if trip.Plan.Name != "" {
		summary = fmt.Sprintf("%s completed over %d days", trip.Plan.Name, len(trip.Plan.Days))
	}

	return models.TripReport{
		TripID:     trip.ID,
		Summary:    summary,
		Highlights: highlights,
		Cards:      cards,
	}
}
