package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/serene/models"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

// CheckinController handles the daily mood check-in.
type CheckinController struct {
	wellness *services.WellnessService
}

func NewCheckinController(wellness *services.WellnessService) *CheckinController {
	return &CheckinController{wellness: wellness}
}

type checkinRequest struct {
	MoodRating int    `json:"mood_rating" binding:"required"`
	Note       string `json:"note"`
}

func (c *CheckinController) Submit(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	var req checkinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}
	res, err := c.wellness.SubmitCheckin(ctx.Request.Context(), sess, services.CheckinInput{
		MoodRating: req.MoodRating,
		Note:       req.Note,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, res)
}

// Today returns today's check-in, or 404 when the mood prompt should be shown.
func (c *CheckinController) Today(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	checkin, err := c.wellness.TodayCheckin(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, checkin)
}

// History lists check-ins over the last ?days= days (default 7).
func (c *CheckinController) History(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	days := 0
	if v := ctx.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalidPayload(ctx)
			return
		}
		days = n
	}
	list, err := c.wellness.CheckinHistory(ctx.Request.Context(), sess, days)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": list})
}

func (c *CheckinController) Moods(ctx *gin.Context) {
	utils.Success(ctx, models.MoodScale)
}
