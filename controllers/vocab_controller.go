package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/services"
)

type VocabController struct {
	vocab  *services.VocabService
	review *services.ReviewService
	rng    RandSource
	log    *logrus.Logger
}

func NewVocabController(vocab *services.VocabService, review *services.ReviewService, rng RandSource, log *logrus.Logger) *VocabController {
	return &VocabController{vocab: vocab, review: review, rng: rng, log: log}
}

// GET /api/vocab/review-words?language=
func (ctl *VocabController) ReviewWords(c *gin.Context) {
	items, err := ctl.review.ReviewWords(c.Request.Context(), middleware.UserID(c), c.Query("language"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

// GET /api/vocab/review-count?language=
func (ctl *VocabController) ReviewCount(c *gin.Context) {
	count, err := ctl.review.ReviewCount(c.Request.Context(), middleware.UserID(c), c.Query("language"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"count": count})
}

type PracticeWordsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// GET /api/vocab/:lessonId/practice-words?limit=
func (ctl *VocabController) PracticeWords(c *gin.Context) {
	lessonID, ok := lessonIDParam(c, "lessonId")
	if !ok {
		return
	}
	var query PracticeWordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	words, err := ctl.vocab.PracticeWords(c.Request.Context(), middleware.UserID(c), lessonID, query.Limit, ctl.rng())
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, words)
}
