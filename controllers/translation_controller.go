package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/services"
)

type TranslationSubmitInput struct {
	LessonID        uuid.UUID `json:"lessonId" binding:"required"`
	QuestionID      string    `json:"questionId" binding:"required"`
	UserTranslation string    `json:"userTranslation" binding:"required"`
	Mode            string    `json:"mode"`
}

type TranslationController struct {
	translation *services.TranslationService
	rng         RandSource
	log         *logrus.Logger
}

func NewTranslationController(translation *services.TranslationService, rng RandSource, log *logrus.Logger) *TranslationController {
	return &TranslationController{translation: translation, rng: rng, log: log}
}

// GET /api/translation/:lessonId/next-question
func (ctl *TranslationController) NextQuestion(c *gin.Context) {
	lessonID, ok := lessonIDParam(c, "lessonId")
	if !ok {
		return
	}
	q, err := ctl.translation.NextQuestion(c.Request.Context(), middleware.UserID(c), lessonID, ctl.rng())
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	if q == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil, "message": "No questions in this lesson."})
		return
	}
	respondOK(c, http.StatusOK, q)
}

// POST /api/translation/submit-answer
func (ctl *TranslationController) SubmitAnswer(c *gin.Context) {
	var input TranslationSubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	mode, err := services.ParseDirection(input.Mode)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	result, err := ctl.translation.SubmitAnswer(c.Request.Context(), middleware.UserID(c), services.TranslationSubmission{
		LessonID:        input.LessonID,
		QuestionID:      input.QuestionID,
		UserTranslation: input.UserTranslation,
		Mode:            mode,
	}, middleware.APIKey(c))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
