package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
)

type TTSRequest struct {
	Text         string          `json:"text" binding:"required"`
	Language     models.Language `json:"language" binding:"required"`
	SpeakingRate float64         `json:"speakingRate"`
}

type TTSController struct {
	tts *services.PronunciationService
	log *logrus.Logger
}

func NewTTSController(tts *services.PronunciationService, log *logrus.Logger) *TTSController {
	return &TTSController{tts: tts, log: log}
}

// POST /api/tts
func (ctl *TTSController) Pronounce(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	audio, err := ctl.tts.Synthesize(c.Request.Context(), req.Text, req.Language, req.SpeakingRate)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"audioContent": base64.StdEncoding.EncodeToString(audio),
		"encoding":     "mp3",
	})
}
