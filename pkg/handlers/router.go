package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnavshah/odysai-api-go/pkg/logging"
)

// NewRouter wires every route; an empty origin list allows all origins
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(h.Log), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", logging.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "OdysAI API (Go Version)",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/rooms", h.CreateRoom)
	rooms := r.Group("/rooms/:roomId")
	{
		rooms.GET("", h.GetRoom)
		rooms.POST("/members", h.JoinRoom)
		rooms.GET("/members", h.ListMembers)
		rooms.GET("/preferences/conflicts", h.GetConflicts)

		rooms.GET("/plans", h.GetPlans)
		rooms.PUT("/plans", h.SavePlans)
		rooms.POST("/plans", h.SavePlans)
		rooms.POST("/plans/validate", h.ValidatePlans)
		rooms.POST("/plans/select", h.SelectPlan)
		rooms.PATCH("/plans/:planId", h.UpdatePlan)
		rooms.POST("/plans/vote", h.CastVote)
		rooms.GET("/plans/votes", h.GetVotes)

		rooms.POST("/trips/start", h.StartTrip)
	}

	members := r.Group("/members/:memberId")
	{
		members.POST("/survey", h.SubmitSurvey)
		members.POST("/ready", h.SetReady)
	}

	trips := r.Group("/trips/:tripId")
	{
		trips.GET("", h.GetTrip)
		trips.POST("/day", h.SetDay)
		trips.POST("/photos", h.AddPhoto)
		trips.GET("/photos", h.ListPhotos)
		trips.POST("/replace-spot", h.ReplaceSpot)
		trips.PUT("/days/:day/slots/:slotId", h.ApplySlot)
		trips.POST("/complete", h.CompleteTrip)
	}

	return r
}
