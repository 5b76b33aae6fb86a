package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arnavshah/odysai-api-go/pkg/mediator"
	"github.com/arnavshah/odysai-api-go/pkg/metrics"
	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/plans"
	"github.com/arnavshah/odysai-api-go/pkg/scoring"
	"github.com/arnavshah/odysai-api-go/pkg/store"
	"github.com/arnavshah/odysai-api-go/pkg/trips"
	"github.com/arnavshah/odysai-api-go/pkg/voting"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Store  store.Store
	Scorer *scoring.Scorer
	Log    zerolog.Logger
}

// New builds a handler with the default scorer
func New(s store.Store, log zerolog.Logger) *Handler {
	return &Handler{Store: s, Scorer: scoring.NewScorer(), Log: log}
}

// fail maps domain and store errors to a status and writes the error body
func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, notFound
	case errors.Is(err, store.ErrConflict):
		status, msg = http.StatusConflict, "Concurrent update, please retry"
	case errors.Is(err, plans.ErrPlanNotFound):
		status, msg = http.StatusNotFound, "Plan not found"
	case errors.Is(err, plans.ErrDayNotFound):
		status, msg = http.StatusNotFound, "Day not found"
	case errors.Is(err, plans.ErrSlotNotFound):
		status, msg = http.StatusNotFound, "Slot not found"
	case errors.Is(err, trips.ErrMembersNotReady):
		status, msg = http.StatusBadRequest, "Not all members are ready"
	case errors.Is(err, trips.ErrInvalidDay):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, trips.ErrTripCompleted):
		status, msg = http.StatusConflict, err.Error()
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.Log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

// CreateRoom opens a new planning room
func (h *Handler) CreateRoom(c *gin.Context) {
	var req struct {
		City          string           `json:"city" binding:"required"`
		DateRange     models.DateRange `json:"dateRange"`
		Theme         []string         `json:"theme"`
		TravelerCount int              `json:"travelerCount" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Theme == nil {
		req.Theme = []string{}
	}

	room := models.Room{
		ID:            uuid.NewString(),
		City:          req.City,
		DateRange:     req.DateRange,
		Theme:         req.Theme,
		TravelerCount: req.TravelerCount,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Store.CreateRoom(c.Request.Context(), room); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	h.Log.Info().Str("room_id", room.ID).Str("city", room.City).Msg("room created")
	c.JSON(http.StatusOK, room)
}

// GetRoom returns the aggregated room status
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")

	room, err := h.Store.GetRoom(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}

	status := models.RoomStatus{
		Room:     *room,
		Members:  members,
		AllReady: trips.AllReady(members),
	}

	// Plans, votes and trips are optional parts of the status.
	if packages, err := h.Store.GetPlanPackages(ctx, roomID); err == nil {
		status.PlanPackages = packages
	} else if !errors.Is(err, store.ErrNotFound) {
		h.fail(c, err, "")
		return
	}
	if votes, err := h.Store.GetVotes(ctx, roomID); err == nil {
		status.Votes = voting.Refresh(votes)
	} else if !errors.Is(err, store.ErrNotFound) {
		h.fail(c, err, "")
		return
	}
	if trip, err := h.Store.GetTripByRoom(ctx, roomID); err == nil {
		status.Trip = trip
	} else if !errors.Is(err, store.ErrNotFound) {
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, status)
}

// JoinRoom adds a member to the room
func (h *Handler) JoinRoom(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Nickname string `json:"nickname" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.Store.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	member := models.Member{
		ID:       uuid.NewString(),
		RoomID:   room.ID,
		Nickname: req.Nickname,
	}
	if err := h.Store.AddMember(ctx, member); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	c.JSON(http.StatusOK, member)
}

// ListMembers returns the room's members in join order
func (h *Handler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")
	if _, err := h.Store.GetRoom(ctx, roomID); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	c.JSON(http.StatusOK, members)
}

// SubmitSurvey replaces the member's survey
func (h *Handler) SubmitSurvey(c *gin.Context) {
	ctx := c.Request.Context()
	var survey models.Survey
	if err := c.ShouldBindJSON(&survey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch survey.BudgetLevel {
	case "", models.BudgetLow, models.BudgetMedium, models.BudgetHigh:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "budgetLevel must be low, medium or high"})
		return
	}
	if survey.InstagramImportance < 0 || survey.InstagramImportance > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instagramImportance must be between 1 and 5"})
		return
	}
	if survey.WakeUpTime != "" && !mediator.ValidTime(survey.WakeUpTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wakeUpTime must be HH:MM"})
		return
	}

	member, err := h.Store.GetMember(ctx, c.Param("memberId"))
	if err != nil {
		h.fail(c, err, "Member not found")
		return
	}
	member.Survey = &survey
	member.SurveyCompleted = true
	if err := h.Store.UpdateMember(ctx, *member); err != nil {
		h.fail(c, err, "Member not found")
		return
	}
	c.JSON(http.StatusOK, member)
}

// SetReady updates the member's ready flag
func (h *Handler) SetReady(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		IsReady *bool `json:"isReady" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isReady is required"})
		return
	}

	member, err := h.Store.GetMember(ctx, c.Param("memberId"))
	if err != nil {
		h.fail(c, err, "Member not found")
		return
	}
	member.IsReady = *req.IsReady
	if err := h.Store.UpdateMember(ctx, *member); err != nil {
		h.fail(c, err, "Member not found")
		return
	}
	c.JSON(http.StatusOK, member)
}

// GetConflicts builds the room's preference conflict report
func (h *Handler) GetConflicts(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")
	if _, err := h.Store.GetRoom(ctx, roomID); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}

	report := mediator.BuildConflictReport(members)
	metrics.ConflictReportsTotal.Inc()
	h.Log.Debug().Str("room_id", roomID).Int("conflicts", len(report.Conflicts)).Msg("conflict report built")
	c.JSON(http.StatusOK, report)
}
