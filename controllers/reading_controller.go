package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/services"
)

type ReadingSubmitInput struct {
	LessonID  uuid.UUID                  `json:"lessonId" binding:"required"`
	ArticleID string                     `json:"articleId" binding:"required"`
	Answers   map[string]services.Answer `json:"answers" binding:"required"`
}

type ReadingController struct {
	reading *services.ReadingService
	rng     RandSource
	log     *logrus.Logger
}

func NewReadingController(reading *services.ReadingService, rng RandSource, log *logrus.Logger) *ReadingController {
	return &ReadingController{reading: reading, rng: rng, log: log}
}

// GET /api/reading/:lessonId/next-article
func (ctl *ReadingController) NextArticle(c *gin.Context) {
	lessonID, ok := lessonIDParam(c, "lessonId")
	if !ok {
		return
	}
	article, err := ctl.reading.NextArticle(c.Request.Context(), middleware.UserID(c), lessonID, ctl.rng())
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil, "message": "No articles in this lesson."})
		return
	}
	respondOK(c, http.StatusOK, article)
}

// POST /api/reading/submit-answers
func (ctl *ReadingController) SubmitAnswers(c *gin.Context) {
	var input ReadingSubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	results, err := ctl.reading.SubmitAnswers(c.Request.Context(), middleware.UserID(c), services.ReadingSubmission{
		LessonID:  input.LessonID,
		ArticleID: input.ArticleID,
		Answers:   input.Answers,
	})
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"results": results})
}
