package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/services"
)

type AICheckInput struct {
	CheckType string          `json:"checkType" binding:"required"`
	Payload   json.RawMessage `json:"payload"`
}

type AIController struct {
	checks *services.AICheckService
	log    *logrus.Logger
}

func NewAIController(checks *services.AICheckService, log *logrus.Logger) *AIController {
	return &AIController{checks: checks, log: log}
}

// POST /api/ai/check
func (ctl *AIController) Check(c *gin.Context) {
	var input AICheckInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	checkType, err := services.ParseCheckType(input.CheckType)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	results, err := ctl.checks.Run(c.Request.Context(), checkType, input.Payload, middleware.APIKey(c))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, results)
}
