package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/serene/middleware"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

// AuthController handles local accounts and third-party sign-in.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// Register creates a local account and signs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}
	res, err := a.auth.Register(ctx.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, res)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}
	res, err := a.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}

// Logout revokes the bearer token used for this request.
func (a *AuthController) Logout(ctx *gin.Context) {
	token, expiresAt := middleware.CurrentToken(ctx)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	a.auth.Logout(token, expiresAt)
	utils.Success(ctx, gin.H{"logged_out": true})
}

func (a *AuthController) Me(ctx *gin.Context) {
	sess, ok := requireSession(ctx)
	if !ok {
		return
	}
	user, err := a.auth.Me(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// OAuthLogin returns the provider consent URL, or redirects to it when
// called with ?redirect=1.
func (a *AuthController) OAuthLogin(ctx *gin.Context) {
	authURL, state, err := a.auth.OAuthLoginURL(ctx.Param("provider"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if ctx.Query("redirect") == "1" {
		ctx.Redirect(http.StatusFound, authURL)
		return
	}
	utils.Success(ctx, gin.H{"url": authURL, "state": state})
}

func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	res, err := a.auth.OAuthCallback(ctx.Request.Context(), ctx.Param("provider"), ctx.Query("code"), ctx.Query("state"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
