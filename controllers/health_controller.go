package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":    "ok",
			"message":   "Service is healthy",
			"timestamp": time.Now().Unix(),
			"db":        "ok",
		}

		sqlDB, err := db.DB()
		if err != nil {
			response["db"] = "error: cannot get DB instance"
			response["status"] = "degraded"
			c.JSON(http.StatusInternalServerError, response)
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			response["db"] = "error: cannot connect to DB"
			response["status"] = "degraded"
			c.JSON(http.StatusInternalServerError, response)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}
