package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/scoring"
	"github.com/arnavshah/odysai-api-go/pkg/store"
	"github.com/arnavshah/odysai-api-go/pkg/trips"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(New(store.NewMemory(), zerolog.Nop()), nil)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, w)["error"].(string)
}

func createRoom(t *testing.T, r http.Handler) models.Room {
	w := do(t, r, http.MethodPost, "/rooms", gin.H{
		"city":          "Busan",
		"dateRange":     gin.H{"start": "2025-05-01", "end": "2025-05-02"},
		"theme":         []string{"healing"},
		"travelerCount": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Room](t, w)
}

func join(t *testing.T, r http.Handler, roomID, nickname string) models.Member {
	w := do(t, r, http.MethodPost, "/rooms/"+roomID+"/members", gin.H{"nickname": nickname})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Member](t, w)
}

func samplePlans() []models.PlanPackage {
	return []models.PlanPackage{
		{
			ID:   "p1",
			Name: "Healing Busan",
			Days: []models.DayPlan{
				{Day: 1, Date: "2025-05-01", Slots: []models.ActivitySlot{
					{ID: "s1", Time: "10:00", Duration: 120, Title: "Spa", Description: "relaxing hot spring", Location: "Haeundae", Tags: []string{"spa"}},
					{ID: "s2", Time: "14:00", Duration: 90, Title: "Market", Description: "local food", Location: "Jagalchi", Tags: []string{"food"}},
				}},
				{Day: 2, Date: "2025-05-02", Slots: []models.ActivitySlot{
					{ID: "s3", Time: "09:00", Duration: 60, Title: "Beach walk", Location: "Gwangalli", Tags: []string{"nature"}},
				}},
			},
			ThemeEmphasis: []string{"healing"},
		},
		{
			ID:   "p2",
			Name: "Night Busan",
			Days: []models.DayPlan{
				{Day: 1, Slots: []models.ActivitySlot{{ID: "n1", Title: "Club", Description: "crowded party", Tags: []string{"nightlife"}}}},
			},
		},
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/rooms", gin.H{"travelerCount": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	room := createRoom(t, r)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Busan", room.City)
	assert.NotEmpty(t, room.CreatedAt)
}

func TestRoomNotFound(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/rooms/nope", "/rooms/nope/members", "/rooms/nope/preferences/conflicts", "/rooms/nope/plans"} {
		w := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := do(t, r, http.MethodPost, "/rooms/nope/members", gin.H{"nickname": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Room not found", errorOf(t, w))
}

func TestMembersSurveyAndReady(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	join(t, r, room.ID, "Ben")

	w := do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"budgetLevel": "luxury"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"wakeUpTime": "late"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"instagramImportance": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "instagramImportance must be between 1 and 5", errorOf(t, w))
	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"instagramImportance": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{
		"emotions":    []string{"healing"},
		"budgetLevel": "low",
		"wakeUpTime":  "07:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Member](t, w)
	assert.True(t, updated.SurveyCompleted)
	require.NotNil(t, updated.Survey)
	assert.Equal(t, models.BudgetLow, updated.Survey.BudgetLevel)

	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/ready", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, "/members/"+ann.ID+"/ready", gin.H{"isReady": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Member](t, w).IsReady)

	w = do(t, r, http.MethodPost, "/members/ghost/ready", gin.H{"isReady": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Member not found", errorOf(t, w))

	w = do(t, r, http.MethodGet, "/rooms/"+room.ID+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[[]models.Member](t, w)
	require.Len(t, members, 2)
	assert.Equal(t, "Ann", members[0].Nickname)
	assert.Equal(t, "Ben", members[1].Nickname)

	w = do(t, r, http.MethodGet, "/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[models.RoomStatus](t, w)
	assert.False(t, status.AllReady)
	assert.Nil(t, status.Trip)
}

func TestConflicts(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	ben := join(t, r, room.ID, "Ben")

	w := do(t, r, http.MethodGet, "/rooms/"+room.ID+"/preferences/conflicts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[models.ConflictReport](t, w)
	assert.Empty(t, empty.Profiles)
	assert.Empty(t, empty.Conflicts)
	assert.Equal(t, models.BudgetMedium, empty.Consensus.Budget)

	do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"budgetLevel": "low", "wakeUpTime": "06:00"})
	do(t, r, http.MethodPost, "/members/"+ben.ID+"/survey", gin.H{"budgetLevel": "high", "wakeUpTime": "10:00"})

	w = do(t, r, http.MethodGet, "/rooms/"+room.ID+"/preferences/conflicts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.ConflictReport](t, w)
	require.Len(t, report.Profiles, 2)
	require.GreaterOrEqual(t, len(report.Conflicts), 2)
	assert.Equal(t, models.ConflictBudget, report.Conflicts[0].Type)
	assert.Equal(t, models.SeverityHigh, report.Conflicts[0].Severity)
	assert.Equal(t, models.ConflictWake, report.Conflicts[1].Type)
}

func TestPlans(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	base := "/rooms/" + room.ID + "/plans"

	w := do(t, r, http.MethodPut, base, samplePlans())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No surveys completed yet", errorOf(t, w))

	do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"emotions": []string{"healing"}, "dislikes": []string{"crowded"}})

	dup := samplePlans()
	dup[1].ID = "p1"
	w = do(t, r, http.MethodPut, base, dup)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base, samplePlans())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := decode[[]models.PlanPackage](t, w)
	require.Len(t, stored, 2)
	for _, p := range stored {
		assert.Equal(t, room.ID, p.RoomID)
		require.NotNil(t, p.FitScore)
		require.Len(t, p.FitScore.PerMember, 1)
	}
	assert.Greater(t, stored[0].FitScore.GroupScore, stored[1].FitScore.GroupScore)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PlanPackage](t, w), 2)

	w = do(t, r, http.MethodPost, base+"/select", gin.H{"planId": "p2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Night Busan", decode[models.PlanPackage](t, w).Name)
	w = do(t, r, http.MethodPost, base+"/select", gin.H{"planId": "p9"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plan not found", errorOf(t, w))

	w = do(t, r, http.MethodPatch, base+"/p1", gin.H{
		"name": "Slow Busan",
		"days": []gin.H{{"day": 2, "slots": []gin.H{{"id": "s4", "title": "Temple"}}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	merged := decode[models.PlanPackage](t, w)
	assert.Equal(t, "Slow Busan", merged.Name)
	require.Len(t, merged.Days, 1)
	assert.Equal(t, "2025-05-02", merged.Days[0].Date)
	assert.Equal(t, "Temple", merged.Days[0].Slots[0].Title)
	assert.NotNil(t, merged.FitScore)

	w = do(t, r, http.MethodPatch, base+"/p9", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidatePlans(t *testing.T) {
	r := newTestRouter(t)
	path := "/rooms/any/plans/validate"

	w := do(t, r, http.MethodPost, path, samplePlans())
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["valid"])
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["plan_count"])
	assert.EqualValues(t, 3, stats["day_count"])
	assert.EqualValues(t, 4, stats["slot_count"])

	w = do(t, r, http.MethodPost, path, []models.PlanPackage{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["valid"])

	w = do(t, r, http.MethodPost, path, gin.H{"not": "a list"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoting(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	ben := join(t, r, room.ID, "Ben")
	do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"emotions": []string{"healing"}})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/rooms/"+room.ID+"/plans", samplePlans()).Code)
	vote := "/rooms/" + room.ID + "/plans/vote"

	w := do(t, r, http.MethodGet, "/rooms/"+room.ID+"/plans/votes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[models.PlanVotes](t, w)
	assert.Empty(t, empty.Tallies)
	assert.Empty(t, empty.WinnerPlanID)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, vote, gin.H{"memberId": ann.ID}).Code)
	w = do(t, r, http.MethodPost, vote, gin.H{"memberId": "ghost", "planId": "p1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Member not found in room", errorOf(t, w))
	w = do(t, r, http.MethodPost, vote, gin.H{"memberId": ann.ID, "planId": "p9"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plan not found", errorOf(t, w))

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, vote, gin.H{"memberId": ann.ID, "planId": "p1"}).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, vote, gin.H{"memberId": ben.ID, "planId": "p2"}).Code)
	w = do(t, r, http.MethodPost, vote, gin.H{"memberId": ben.ID, "planId": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	votes := decode[models.PlanVotes](t, w)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 0}, votes.Tallies)
	assert.Equal(t, "p1", votes.WinnerPlanID)

	w = do(t, r, http.MethodGet, "/rooms/"+room.ID, nil)
	status := decode[models.RoomStatus](t, w)
	require.NotNil(t, status.Votes)
	assert.Equal(t, "p1", status.Votes.WinnerPlanID)
	assert.Len(t, status.PlanPackages, 2)
}

func TestTripLifecycle(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	ben := join(t, r, room.ID, "Ben")
	do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"emotions": []string{"healing"}, "dislikes": []string{"crowded"}})
	do(t, r, http.MethodPost, "/members/"+ben.ID+"/survey", gin.H{"emotions": []string{"food"}})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/rooms/"+room.ID+"/plans", samplePlans()).Code)
	start := "/rooms/" + room.ID + "/trips/start"

	w := do(t, r, http.MethodPost, start, gin.H{"planId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not all members are ready", errorOf(t, w))

	do(t, r, http.MethodPost, "/members/"+ann.ID+"/ready", gin.H{"isReady": true})
	do(t, r, http.MethodPost, "/members/"+ben.ID+"/ready", gin.H{"isReady": true})

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, start, gin.H{"planId": "p9"}).Code)
	w = do(t, r, http.MethodPost, start, gin.H{"planId": "p1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	trip := decode[models.Trip](t, w)
	assert.Equal(t, models.TripActive, trip.Status)
	assert.Equal(t, 1, trip.CurrentDay)
	assert.Equal(t, "2025-05-01", trip.StartDate)
	require.NotNil(t, trip.ConflictReport)
	assert.Len(t, trip.ConflictReport.Profiles, 2)
	base := "/trips/" + trip.ID

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/day", gin.H{"currentDay": 3}).Code)
	w = do(t, r, http.MethodPost, base+"/day", gin.H{"currentDay": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[models.Trip](t, w).CurrentDay)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/photos", gin.H{}).Code)
	do(t, r, http.MethodPost, base+"/photos", gin.H{"url": "https://img/1.jpg"})
	w = do(t, r, http.MethodPost, base+"/photos", gin.H{"url": "https://img/1.jpg"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, base+"/photos", nil)
	assert.Equal(t, []any{"https://img/1.jpg"}, decode[map[string]any](t, w)["photos"])

	w = do(t, r, http.MethodPost, base+"/replace-spot", gin.H{
		"day": 1, "slotId": "s2", "reason": "rain",
		"candidates": []gin.H{
			{"title": "Crowded arcade", "description": "crowded indoor games"},
			{"title": "Tea house", "description": "quiet healing tea", "tags": []string{"cafe"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var alt struct {
		Alternatives []scoring.RankedSlot `json:"alternatives"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alt))
	require.Len(t, alt.Alternatives, 2)
	assert.Equal(t, "Tea house", alt.Alternatives[0].Slot.Title)
	assert.Equal(t, "s2", alt.Alternatives[0].Slot.ID)
	assert.Equal(t, "14:00", alt.Alternatives[0].Slot.Time)
	assert.Equal(t, "Jagalchi", alt.Alternatives[0].Slot.Location)
	assert.GreaterOrEqual(t, alt.Alternatives[0].GroupScore, alt.Alternatives[1].GroupScore)

	w = do(t, r, http.MethodPost, base+"/replace-spot", gin.H{"day": 1, "slotId": "zz", "candidates": []gin.H{{"title": "x"}}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Slot not found", errorOf(t, w))
	w = do(t, r, http.MethodPost, base+"/replace-spot", gin.H{"day": 1, "slotId": "s2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/days/1/slots/s2", alt.Alternatives[0].Slot)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[models.Trip](t, w)
	assert.Equal(t, "Tea house", replaced.Plan.Days[0].Slots[1].Title)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPut, base+"/days/7/slots/s2", gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, base+"/days/one/slots/s2", gin.H{"title": "x"}).Code)

	w = do(t, r, http.MethodPost, base+"/complete", trips.Completion{Photos: []string{"https://img/2.jpg", "https://img/1.jpg"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[models.TripReport](t, w)
	assert.Equal(t, trip.ID, report.TripID)
	assert.Equal(t, trips.DefaultHighlights, report.Highlights)
	require.Len(t, report.Cards, 2)
	assert.Equal(t, "Spa, Tea house", report.Cards[0].Body)

	w = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[models.Trip](t, w)
	assert.Equal(t, models.TripCompleted, done.Status)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, done.Photos)
	require.NotNil(t, done.Report)

	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, base+"/day", gin.H{"currentDay": 1}).Code)
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPut, base+"/days/1/slots/s1", gin.H{"title": "x"}).Code)

	w = do(t, r, http.MethodGet, "/rooms/"+room.ID, nil)
	status := decode[models.RoomStatus](t, w)
	require.NotNil(t, status.Trip)
	assert.Equal(t, trip.ID, status.Trip.ID)
	assert.True(t, status.AllReady)
}

func TestSavePlansRefreshesTripReport(t *testing.T) {
	r := newTestRouter(t)
	room := createRoom(t, r)
	ann := join(t, r, room.ID, "Ann")
	do(t, r, http.MethodPost, "/members/"+ann.ID+"/survey", gin.H{"budgetLevel": "low"})
	do(t, r, http.MethodPost, "/members/"+ann.ID+"/ready", gin.H{"isReady": true})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/rooms/"+room.ID+"/plans", samplePlans()).Code)
	trip := decode[models.Trip](t, do(t, r, http.MethodPost, "/rooms/"+room.ID+"/trips/start", gin.H{"planId": "p1"}))

	ben := join(t, r, room.ID, "Ben")
	do(t, r, http.MethodPost, "/members/"+ben.ID+"/survey", gin.H{"budgetLevel": "high"})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/rooms/"+room.ID+"/plans", samplePlans()).Code)

	got := decode[models.Trip](t, do(t, r, http.MethodGet, "/trips/"+trip.ID, nil))
	require.NotNil(t, got.ConflictReport)
	assert.Len(t, got.ConflictReport.Profiles, 2)
	require.NotEmpty(t, got.ConflictReport.Conflicts)
	assert.Equal(t, models.ConflictBudget, got.ConflictReport.Conflicts[0].Type)
}

func TestTripNotFound(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/trips/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Trip not found", errorOf(t, w))
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/trips/nope/complete", nil).Code)
}

func TestCORSAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/rooms", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
