package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

// ProfileController serves the dashboard and profile edits.
type ProfileController struct {
	wellness *services.WellnessService
}

func NewProfileController(wellness *services.WellnessService) *ProfileController {
	return &ProfileController{wellness: wellness}
}

// Dashboard returns profile, level progress and today's activity state.
func (p *ProfileController) Dashboard(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	d, err := p.wellness.Dashboard(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, d)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Timezone *string `json:"timezone"`
}

func (p *ProfileController) Update(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}
	profile, err := p.wellness.UpdateProfile(ctx.Request.Context(), sess, services.ProfileChanges{
		Username: req.Username,
		Timezone: req.Timezone,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, profile)
}
