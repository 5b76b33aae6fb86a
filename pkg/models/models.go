package models

// BudgetLevel is a member's spending preference
type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "low"
	BudgetMedium BudgetLevel = "medium"
	BudgetHigh   BudgetLevel = "high"
)

// Priority weights a member's fit score
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DateRange is an inclusive pair of YYYY-MM-DD dates
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Room is a group planning a trip together
type Room struct {
	ID            string    `json:"id"`
	City          string    `json:"city"`
	DateRange     DateRange `json:"dateRange"`
	Theme         []string  `json:"theme"`
	TravelerCount int       `json:"travelerCount"`
	CreatedAt     string    `json:"createdAt"`
}

// Survey holds one member's travel preferences
type Survey struct {
	Emotions               []string    `json:"emotions"`
	Dislikes               []string    `json:"dislikes"`
	BudgetLevel            BudgetLevel `json:"budgetLevel"`
	Constraints            []string    `json:"constraints"`
	WakeUpTime             string      `json:"wakeUpTime"`
	InstagramImportance    int         `json:"instagramImportance"`
	Priority               Priority    `json:"priority,omitempty"`
	MustHaves              []string    `json:"mustHaves,omitempty"`
	WakeFlexibilityMinutes int         `json:"wakeFlexibilityMinutes,omitempty"`
	TravelPurpose          []string    `json:"travelPurpose,omitempty"`
	StaminaLevel           string      `json:"staminaLevel,omitempty"`
	MaxTravelMinutes       int         `json:"maxTravelMinutes,omitempty"`
}

// Member is a traveler inside a room
type Member struct {
	ID              string  `json:"id"`
	RoomID          string  `json:"roomId"`
	Nickname        string  `json:"nickname"`
	SurveyCompleted bool    `json:"surveyCompleted"`
	IsReady         bool    `json:"isReady"`
	Survey          *Survey `json:"survey,omitempty"`
}

// ActivitySlot is one scheduled activity in a day
type ActivitySlot struct {
	ID          string   `json:"id"`
	Time        string   `json:"time"`
	Duration    int      `json:"duration"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// DayPlan is an ordered list of slots for one trip day
type DayPlan struct {
	Day   int            `json:"day"`
	Date  string         `json:"date"`
	Slots []ActivitySlot `json:"slots"`
}

// PlanPackage is one itinerary option offered to the room
type PlanPackage struct {
	ID            string        `json:"id"`
	RoomID        string        `json:"roomId"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Days          []DayPlan     `json:"days"`
	ThemeEmphasis []string      `json:"themeEmphasis"`
	FitScore      *PlanFitScore `json:"fitScore,omitempty"`
}

// SlotCount returns the number of slots across all days
func (p *PlanPackage) SlotCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Slots)
	}
	return n
}

// PreferenceProfile is the normalized view of a member's survey
type PreferenceProfile struct {
	MemberID            string   `json:"memberId"`
	Nickname            string   `json:"nickname"`
	BudgetScore         int      `json:"budgetScore"`
	WakeMinutes         int      `json:"wakeMinutes"`
	Emotions            []string `json:"emotions"`
	Dislikes            []string `json:"dislikes"`
	Constraints         []string `json:"constraints"`
	InstagramImportance int      `json:"instagramImportance"`
}

// WakeWindow is an HH:MM range
type WakeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConsensusBand summarizes what the group agrees on
type ConsensusBand struct {
	Budget            BudgetLevel `json:"budget"`
	WakeWindow        WakeWindow  `json:"wakeWindow"`
	DominantEmotions  []string    `json:"dominantEmotions"`
	SharedConstraints []string    `json:"sharedConstraints"`
}

// ConflictType names the preference dimension in disagreement
type ConflictType string

const (
	ConflictBudget     ConflictType = "budget"
	ConflictWake       ConflictType = "wake"
	ConflictDislike    ConflictType = "dislike"
	ConflictConstraint ConflictType = "constraint"
	ConflictInstagram  ConflictType = "instagram"
)

// Severity grades a conflict
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConflictItem is a single detected disagreement
type ConflictItem struct {
	Type            ConflictType `json:"type"`
	Severity        Severity     `json:"severity"`
	Description     string       `json:"description"`
	MembersInvolved []string     `json:"membersInvolved"`
}

// ConflictReport bundles profiles, consensus and conflicts
type ConflictReport struct {
	Profiles  []PreferenceProfile `json:"profiles"`
	Consensus ConsensusBand       `json:"consensus"`
	Conflicts []ConflictItem      `json:"conflicts"`
}

// MemberFit is one member's fit against a plan
type MemberFit struct {
	MemberID string   `json:"memberId"`
	Nickname string   `json:"nickname"`
	Score    int      `json:"score"`
	Notes    []string `json:"notes"`
}

// PlanFitScore is the group's fit against a plan
type PlanFitScore struct {
	GroupScore int         `json:"groupScore"`
	PerMember  []MemberFit `json:"perMember"`
	Drivers    []string    `json:"drivers"`
	Warnings   []string    `json:"warnings"`
}

// PlanVotes is the room's single-choice vote record
type PlanVotes struct {
	Tallies      map[string]int    `json:"tallies"`
	Voters       map[string]string `json:"voters"`
	WinnerPlanID string            `json:"winnerPlanId,omitempty"`
}

// NewPlanVotes returns an empty vote record
func NewPlanVotes() *PlanVotes {
	return &PlanVotes{
		Tallies: make(map[string]int),
		Voters:  make(map[string]string),
	}
}

// TripStatus is the lifecycle state of a trip
type TripStatus string

const (
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)

// TripReportCard is one card of the post-trip report
type TripReportCard struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
	Day   int      `json:"day,omitempty"`
}

// TripReport is produced when a trip completes
type TripReport struct {
	TripID     string           `json:"tripId"`
	Summary    string           `json:"summary"`
	Highlights []string         `json:"highlights"`
	Cards      []TripReportCard `json:"cards"`
	ShareURL   string           `json:"shareUrl,omitempty"`
}

// Trip is a started itinerary
type Trip struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"roomId"`
	Plan           PlanPackage     `json:"plan"`
	Status         TripStatus      `json:"status"`
	StartDate      string          `json:"startDate"`
	CurrentDay     int             `json:"currentDay"`
	ConflictReport *ConflictReport `json:"conflictReport,omitempty"`
	Report         *TripReport     `json:"report,omitempty"`
	Photos         []string        `json:"photos"`
}

// RoomStatus is the aggregated room view returned to clients
type RoomStatus struct {
	Room         Room          `json:"room"`
	Members      []Member      `json:"members"`
	AllReady     bool          `json:"allReady"`
	PlanPackages []PlanPackage `json:"planPackages,omitempty"`
	Votes        *PlanVotes    `json:"votes,omitempty"`
	Trip         *Trip         `json:"trip,omitempty"`
}
