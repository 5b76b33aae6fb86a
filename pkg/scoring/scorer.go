package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

const (
	neutralScore       = 50
	dislikePenalty     = 15
	emotionBonus       = 8
	photogenicBonus    = 6
	luxuryPenalty      = 6
	staminaPenalty     = 10
	photogenicMinimum  = 4
	goodAlignmentFloor = 70
)

// Notes and driver strings are part of the JSON contract with the UI.
const (
	NoteBelowNeutral     = "Below neutral fit"
	NotePhotogenic       = "Needs photogenic spots"
	NoteBudgetFriendly   = "Prefer budget-friendly options"
	DriverGoodAlignment  = "Good overall alignment to preferences"
	DriverMixedAlignment = "Mixed alignment; review per-member scores"
	WarningNoMembers     = "No members provided"
)

// EmotionCategory is a survey emotion backed by slot keywords
type EmotionCategory struct {
	Name     string
	Keywords []string
}

// DefaultEmotionCategories returns the keyword table for survey emotions
func DefaultEmotionCategories() []EmotionCategory {
	return []EmotionCategory{
		{Name: "healing", Keywords: []string{"힐링", "healing", "relax", "spa", "wellness", "calm"}},
		{Name: "excitement", Keywords: []string{"설렘", "excite", "festival", "show", "nightlife"}},
		{Name: "adventure", Keywords: []string{"모험", "adventure", "hike", "surf", "rafting", "activity"}},
		{Name: "culture", Keywords: []string{"문화", "museum", "gallery", "heritage", "tour"}},
		{Name: "foodie", Keywords: []string{"food", "맛집", "restaurant", "cafe", "market", "foodie"}},
	}
}

// DefaultPhotogenicKeywords marks slots that suit instagram-minded members
func DefaultPhotogenicKeywords() []string {
	return []string{"photo", "view", "뷰", "야경", "sunset", "instagram", "카페", "scenic"}
}

// Scorer rates itineraries against member surveys with keyword heuristics
type Scorer struct {
	Emotions   []EmotionCategory
	Photogenic []string
	Luxury     []string
	Strenuous  []string
	LowStamina []string
}

// NewScorer creates a scorer with the default keyword tables
func NewScorer() *Scorer {
	return &Scorer{
		Emotions:   DefaultEmotionCategories(),
		Photogenic: DefaultPhotogenicKeywords(),
		Luxury:     []string{"fine dining", "luxury"},
		Strenuous:  []string{"hike", "trail", "trek"},
		LowStamina: []string{"low stamina", "mobility"},
	}
}

// SlotScore rates one slot for one survey, clamped to [0,100]
func (s *Scorer) SlotScore(slot models.ActivitySlot, survey *models.Survey) int {
	if survey == nil {
		return neutralScore
	}

	text := strings.ToLower(slot.Title + " " + slot.Description)
	tags := make([]string, len(slot.Tags))
	for i, t := range slot.Tags {
		tags[i] = strings.ToLower(t)
	}
	score := neutralScore

	for _, dislike := range survey.Dislikes {
		d := strings.ToLower(dislike)
		if d != "" && strings.Contains(text, d) {
			score -= dislikePenalty
		}
	}

	selected := foldSet(survey.Emotions)
	for _, cat := range s.Emotions {
		if _, ok := selected[cat.Name]; !ok {
			continue
		}
		if matchesAny(text, tags, cat.Keywords) {
			score += emotionBonus
		}
	}

	if survey.InstagramImportance >= photogenicMinimum && matchesAny(text, tags, s.Photogenic) {
		score += photogenicBonus
	}

	if survey.BudgetLevel == models.BudgetLow && containsAny(text, s.Luxury) {
		score -= luxuryPenalty
	}

	if s.limitedStamina(survey.Constraints) && containsAny(text, s.Strenuous) {
		score -= staminaPenalty
	}

	return clamp(score)
}

// MemberScore averages slot scores across the plan and applies the priority weight
func (s *Scorer) MemberScore(plan models.PlanPackage, m models.Member) models.MemberFit {
	total, n := 0, 0
	for _, day := range plan.Days {
		for _, slot := range day.Slots {
			total += s.SlotScore(slot, m.Survey)
			n++
		}
	}
	base := float64(neutralScore)
	if n > 0 {
		base = float64(total) / float64(n)
	}

	survey := m.Survey
	if survey == nil {
		survey = &models.Survey{}
	}
	final := clamp(int(math.Round(base * priorityWeight(survey.Priority))))

	notes := []string{}
	if final < neutralScore {
		notes = append(notes, NoteBelowNeutral)
	}
	insta := survey.InstagramImportance
	if insta == 0 {
		insta = 3
	}
	if insta >= photogenicMinimum {
		notes = append(notes, NotePhotogenic)
	}
	if survey.BudgetLevel == models.BudgetLow {
		notes = append(notes, NoteBudgetFriendly)
	}

	return models.MemberFit{MemberID: m.ID, Nickname: m.Nickname, Score: final, Notes: notes}
}

// ScorePlan scores a plan for every member with a survey
func (s *Scorer) ScorePlan(plan models.PlanPackage, members []models.Member) models.PlanFitScore {
	perMember := []models.MemberFit{}
	for _, m := range members {
		if m.Survey == nil {
			continue
		}
		perMember = append(perMember, s.MemberScore(plan, m))
	}
	if len(perMember) == 0 {
		return models.PlanFitScore{
			GroupScore: 0,
			PerMember:  perMember,
			Drivers:    []string{},
			Warnings:   []string{WarningNoMembers},
		}
	}

	sum := 0
	warnings := []string{}
	for _, fit := range perMember {
		sum += fit.Score
		if fit.Score < neutralScore {
			warnings = append(warnings, fmt.Sprintf("%s low satisfaction", fit.Nickname))
		}
	}
	group := int(math.Round(float64(sum) / float64(len(perMember))))

	driver := DriverMixedAlignment
	if group >= goodAlignmentFloor {
		driver = DriverGoodAlignment
	}

	return models.PlanFitScore{
		GroupScore: group,
		PerMember:  perMember,
		Drivers:    []string{driver},
		Warnings:   warnings,
	}
}

// RankedSlot is a candidate replacement slot with its group fit
type RankedSlot struct {
	Slot       models.ActivitySlot `json:"slot"`
	GroupScore int                 `json:"groupScore"`
	Warnings   []string            `json:"warnings"`
}

// RankAlternatives scores each candidate as a single-slot plan and orders
// them best group fit first. Equal scores keep their input order.
func (s *Scorer) RankAlternatives(candidates []models.ActivitySlot, members []models.Member) []RankedSlot {
	ranked := make([]RankedSlot, 0, len(candidates))
	for _, c := range candidates {
		fit := s.ScorePlan(models.PlanPackage{Days: []models.DayPlan{{Slots: []models.ActivitySlot{c}}}}, members)
		ranked = append(ranked, RankedSlot{Slot: c, GroupScore: fit.GroupScore, Warnings: fit.Warnings})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GroupScore > ranked[j].GroupScore
	})
	return ranked
}

func (s *Scorer) limitedStamina(constraints []string) bool {
	for _, c := range constraints {
		if containsAny(strings.ToLower(c), s.LowStamina) {
			return true
		}
	}
	return false
}

func priorityWeight(p models.Priority) float64 {
	switch p {
	case models.PriorityHigh:
		return 1.1
	case models.PriorityLow:
		return 0.9
	default:
		return 1.0
	}
}

func matchesAny(text string, tags, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
		for _, t := range tags {
			if strings.Contains(t, k) {
				return true
			}
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func clamp(score int) int {
	return max(0, min(100, score))
}
