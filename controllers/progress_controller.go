package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
)

type ProgressUpdateInput struct {
	Action  string          `json:"action" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

type ProgressController struct {
	review *services.ReviewService
	log    *logrus.Logger
}

func NewProgressController(review *services.ReviewService, log *logrus.Logger) *ProgressController {
	return &ProgressController{review: review, log: log}
}

// PUT /api/progress/:progressId
func (ctl *ProgressController) Update(c *gin.Context) {
	progressID, err := uuid.Parse(c.Param("progressId"))
	if err != nil {
		respondMessage(c, http.StatusNotFound, models.ErrProgressNotFound.Error())
		return
	}
	var input ProgressUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	action, err := services.ParseProgressAction(input.Action)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}

	progress, err := ctl.review.Apply(c.Request.Context(), middleware.UserID(c), progressID, action, input.Payload)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, progress.View())
}
