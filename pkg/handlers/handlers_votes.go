package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/odysai-api-go/pkg/metrics"
	"github.com/arnavshah/odysai-api-go/pkg/models"
	"github.com/arnavshah/odysai-api-go/pkg/plans"
	"github.com/arnavshah/odysai-api-go/pkg/store"
	"github.com/arnavshah/odysai-api-go/pkg/voting"
)

// CastVote records a member's single-choice vote for a plan
func (h *Handler) CastVote(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("roomId")

	var req struct {
		MemberID string `json:"memberId"`
		PlanID   string `json:"planId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.MemberID == "" || req.PlanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberId and planId are required"})
		return
	}

	members, err := h.Store.GetRoomMembers(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Room not found")
		return
	}
	if !hasMember(members, req.MemberID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found in room"})
		return
	}
	packages, err := h.Store.GetPlanPackages(ctx, roomID)
	if err != nil {
		h.fail(c, err, "Plan not found")
		return
	}
	if _, err := plans.Find(packages, req.PlanID); err != nil {
		h.fail(c, err, "")
		return
	}

	votes, err := h.Store.UpdateVotes(ctx, roomID, func(v *models.PlanVotes) error {
		voting.CastVote(v, req.MemberID, req.PlanID)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.VotesCastTotal.WithLabelValues("conflict").Inc()
		}
		h.fail(c, err, "")
		return
	}
	metrics.VotesCastTotal.WithLabelValues("ok").Inc()
	h.Log.Info().Str("room_id", roomID).Str("member_id", req.MemberID).Str("plan_id", req.PlanID).
		Str("winner", votes.WinnerPlanID).Msg("vote cast")
	c.JSON(http.StatusOK, votes)
}

// GetVotes returns the room's tallies with the winner recomputed
func (h *Handler) GetVotes(c *gin.Context) {
	votes, err := h.Store.GetVotes(c.Request.Context(), c.Param("roomId"))
	if errors.Is(err, store.ErrNotFound) {
		votes, err = models.NewPlanVotes(), nil
	}
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, voting.Refresh(votes))
}

func hasMember(members []models.Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}
