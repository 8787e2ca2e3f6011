package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/services"
)

type AdminController struct {
	importer *services.LessonImporter
	log      *logrus.Logger
}

func NewAdminController(importer *services.LessonImporter, log *logrus.Logger) *AdminController {
	return &AdminController{importer: importer, log: log}
}

// POST /api/admin/lessons: body là một bài học hoặc mảng bài học (cùng định dạng file seed)
func (ctl *AdminController) ImportLessons(c *gin.Context) {
	report, err := ctl.importer.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	ctl.log.WithFields(logrus.Fields{"created": report.Created, "updated": report.Updated}).Info("admin import lessons")
	respondOK(c, http.StatusOK, report)
}
