package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/serene/models"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

// ExerciseController exposes the catalog and exercise completion.
type ExerciseController struct {
	wellness *services.WellnessService
}

func NewExerciseController(wellness *services.WellnessService) *ExerciseController {
	return &ExerciseController{wellness: wellness}
}

// List returns the catalog, optionally filtered by ?category=.
func (e *ExerciseController) List(ctx *gin.Context) {
	list, err := e.wellness.ListExercises(ctx.Request.Context(), strings.TrimSpace(ctx.Query("category")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": list, "categories": models.Categories})
}

func (e *ExerciseController) Get(ctx *gin.Context) {
	ex, err := e.wellness.GetExercise(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, ex)
}

// Complete awards the exercise's XP to the caller and advances their streak.
func (e *ExerciseController) Complete(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	res, err := e.wellness.CompleteExercise(ctx.Request.Context(), sess, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, res)
}

// Completions pages through the caller's completion log.
func (e *ExerciseController) Completions(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	page, pageSize := utils.ParsePagination(ctx.Query("page"), ctx.Query("page_size"))
	items, total, err := e.wellness.CompletionHistory(ctx.Request.Context(), sess, page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, utils.NewPage(items, page, pageSize, total))
}
