package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/odysai-api-go/pkg/mediator"
	"github.com/arnavshah/odysai-api-go/pkg/metrics"
	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/plans"
	"github.com/arnavshah/odysai-api-go/pkg/store"
)

// SavePlans accepts the itinerary provider's packages, scores them against
// the surveyed members and stores them for the room
func (h *Handler) SavePlans(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")

	var packages []models.PlanPackage
	if err := c.ShouldBindJSON(&packages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Store.GetRoom(ctx, roomID); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	if !anySurvey(members) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No surveys completed yet"})
		return
	}
	if _, err := plans.Validate(packages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range packages {
		packages[i].RoomID = roomID
		h.score(&packages[i], members)
	}
	if err := h.Store.SetPlanPackages(ctx, roomID, packages); err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	if err := h.refreshTripReport(ctx, roomID, members); err != nil {
		h.fail(c, err, "")
		return
	}

	h.Log.Info().Str("room_id", roomID).Int("plans", len(packages)).Msg("plan packages stored")
	c.JSON(http.StatusOK, packages)
}

// GetPlans returns the room's stored plan packages
func (h *Handler) GetPlans(c *gin.Context) {
	packages, err := h.Store.GetPlanPackages(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		h.fail(c, err, "No plans generated yet")
		return
	}
	c.JSON(http.StatusOK, packages)
}

// SelectPlan returns a single plan package
func (h *Handler) SelectPlan(c *gin.Context) {
	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId is required"})
		return
	}

	packages, err := h.Store.GetPlanPackages(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		h.fail(c, err, "No plans available")
		return
	}
	idx, err := plans.Find(packages, req.PlanID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, packages[idx])
}

// UpdatePlan merge-updates one plan and rescores it
func (h *Handler) UpdatePlan(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")

	var upd plans.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	packages, err := h.Store.GetPlanPackages(ctx, roomID)
	if err != nil {
		h.fail(c, err, "No plans found")
		return
	}
	idx, err := plans.Find(packages, c.Param("planId"))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}

	merged := plans.Merge(packages[idx], upd)
	packages[idx] = merged
	if _, err := plans.Validate(packages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.score(&packages[idx], members)
	if err := h.Store.SetPlanPackages(ctx, roomID, packages); err != nil {
		h.fail(c, err, "No plans found")
		return
	}
	c.JSON(http.StatusOK, packages[idx])
}

func (h *Handler) score(plan *models.PlanPackage, members []models.Member) {
	fit := h.Scorer.ScorePlan(*plan, members)
	plan.FitScore = &fit
	metrics.PlansScoredTotal.Inc()
	metrics.GroupFitScore.Observe(float64(fit.GroupScore))
}

// refreshTripReport keeps an existing trip's conflict report in step with new plans
func (h *Handler) refreshTripReport(ctx context.Context, roomID string, members []models.Member) error {
	trip, err := h.Store.GetTripByRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	report := mediator.BuildConflictReport(members)
	trip.ConflictReport = &report
	return h.Store.UpdateTrip(ctx, *trip)
}

func anySurvey(members []models.Member) bool {
	for _, m := range members {
		if m.Survey != nil {
			return true
		}
	}
	return false
}
