package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/services"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	AIAPIKey string `json:"aiApiKey" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

type CompleteProfileInput struct {
	Username string `json:"username" binding:"required"`
	AIAPIKey string `json:"aiApiKey" binding:"required"`
}

type AuthController struct {
	auth *services.AuthService
	log  *logrus.Logger
}

func NewAuthController(auth *services.AuthService, log *logrus.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// ====== HANDLERS ======
func (ctl *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	token, err := ctl.auth.Register(c.Request.Context(), services.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		AIAPIKey: input.AIAPIKey,
	})
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"token": token})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	token, err := ctl.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": token})
}

func (ctl *AuthController) GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	result, err := ctl.auth.GoogleLogin(c.Request.Context(), input.IDToken)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (ctl *AuthController) CompleteProfile(c *gin.Context) {
	var input CompleteProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	token, err := ctl.auth.CompleteProfile(c.Request.Context(), middleware.UserID(c), input.Username, input.AIAPIKey)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": token})
}

func (ctl *AuthController) Me(c *gin.Context) {
	respondOK(c, http.StatusOK, middleware.CurrentUser(c))
}
