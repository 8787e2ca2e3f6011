package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": status < 400, "message": message})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidAction),
		errors.Is(err, models.ErrInvalidCheckType),
		errors.Is(err, models.ErrInvalidLessonType),
		errors.Is(err, models.ErrInvalidPayload),
		errors.Is(err, models.ErrUserExists):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotAuthorized),
		errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrLessonNotFound),
		errors.Is(err, models.ErrQuestionNotFound),
		errors.Is(err, models.ErrArticleNotFound),
		errors.Is(err, models.ErrProgressNotFound),
		errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError là điểm duy nhất chuyển lỗi nghiệp vụ thành response.
// Lỗi 500 chỉ ghi chi tiết vào log.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status := statusOf(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("lỗi xử lý request")
		respondMessage(c, status, "Server error")
		return
	}
	respondMessage(c, status, err.Error())
}

func bindError(c *gin.Context, err error) {
	respondMessage(c, http.StatusBadRequest, err.Error())
}
