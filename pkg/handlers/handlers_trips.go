package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/odysai-api-go/pkg/mediator"
	"github.com/arnavshah/odysai-api-go/pkg/metrics"
	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/plans"
	"github.com/arnavshah/odysai-api-go/pkg/trips"
)

// StartTrip starts the chosen plan once every member is ready
func (h *Handler) StartTrip(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")

	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId is required"})
		return
	}

	room, err := h.Store.GetRoom(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room or plans not found")
		return
	}
	packages, err := h.Store.GetPlanPackages(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room or plans not found")
		return
	}
	idx, err := plans.Find(packages, req.PlanID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}

	trip, err := trips.Start(*room, packages[idx], members, mediator.BuildConflictReport(members))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if err := h.Store.CreateTrip(ctx, trip); err != nil {
		h.fail(c, err, "")
		return
	}
	metrics.TripsTotal.WithLabelValues("started").Inc()
	h.Log.Info().Str("room_id", roomID).Str("trip_id", trip.ID).Str("plan_id", req.PlanID).Msg("trip started")
	c.JSON(http.StatusOK, trip)
}

// GetTrip returns a trip
func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.Store.GetTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	c.JSON(http.StatusOK, trip)
}

// SetDay moves the trip to another day of its plan
func (h *Handler) SetDay(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		CurrentDay int `json:"currentDay" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentDay is required"})
		return
	}

	trip, err := h.Store.GetTrip(ctx, c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	if err := trips.SetDay(trip, req.CurrentDay); err != nil {
		h.fail(c, err, "")
		return
	}
	if err := h.Store.UpdateTrip(ctx, *trip); err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	c.JSON(http.StatusOK, trip)
}

// AddPhoto attaches a photo URL to the trip
func (h *Handler) AddPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	trip, err := h.Store.GetTrip(ctx, c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	trips.AddPhotos(trip, req.URL)
	if err := h.Store.UpdateTrip(ctx, *trip); err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": trip.Photos})
}

// ListPhotos returns the trip's photo URLs
func (h *Handler) ListPhotos(c *gin.Context) {
	trip, err := h.Store.GetTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	photos := trip.Photos
	if photos == nil {
		photos = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// ReplaceSpot ranks candidate replacements for one slot by group fit
func (h *Handler) ReplaceSpot(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Day        int                   `json:"day" binding:"required"`
		SlotID     string                `json:"slotId" binding:"required"`
		Reason     string                `json:"reason"`
		Candidates []models.ActivitySlot `json:"candidates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day and slotId are required"})
		return
	}
	if len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidates are required"})
		return
	}

	trip, err := h.Store.GetTrip(ctx, c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	di, si, err := plans.FindSlot(trip.Plan, req.Day, req.SlotID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	members, err := h.Store.GetRoomMembers(ctx, trip.RoomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}

	original := trip.Plan.Days[di].Slots[si]
	candidates := make([]models.ActivitySlot, len(req.Candidates))
	for i, cand := range req.Candidates {
		candidates[i] = plans.InheritSlot(original, cand)
	}
	ranked := h.Scorer.RankAlternatives(candidates, members)

	h.Log.Debug().Str("trip_id", trip.ID).Str("slot_id", req.SlotID).Str("reason", req.Reason).
		Int("candidates", len(ranked)).Msg("spot alternatives ranked")
	c.JSON(http.StatusOK, gin.H{
		"day":          req.Day,
		"slotId":       req.SlotID,
		"reason":       req.Reason,
		"alternatives": ranked,
	})
}

// ApplySlot replaces a slot in the trip's plan
func (h *Handler) ApplySlot(c *gin.Context) {
	ctx := c.Request.Context()
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be a number"})
		return
	}
	var slot models.ActivitySlot
	if err := c.ShouldBindJSON(&slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.Store.GetTrip(ctx, c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	if trip.Status == models.TripCompleted {
		h.fail(c, trips.ErrTripCompleted, "")
		return
	}
	if err := plans.ReplaceSlot(&trip.Plan, day, c.Param("slotId"), slot); err != nil {
		h.fail(c, err, "")
		return
	}
	if err := h.Store.UpdateTrip(ctx, *trip); err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	c.JSON(http.StatusOK, trip)
}

// CompleteTrip closes the trip and stores its report
func (h *Handler) CompleteTrip(c *gin.Context) {
	ctx := c.Request.Context()
	var req trips.Completion
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.Store.GetTrip(ctx, c.Param("tripId"))
	if err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	report := trips.Complete(trip, req)
	if err := h.Store.UpdateTrip(ctx, *trip); err != nil {
		h.fail(c, err, "Trip not found")
		return
	}
	metrics.TripsTotal.WithLabelValues("completed").Inc()
	h.Log.Info().Str("trip_id", trip.ID).Int("photos", len(trip.Photos)).Msg("trip completed")
	c.JSON(http.StatusOK, report)
}
