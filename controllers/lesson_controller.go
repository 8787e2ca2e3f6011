package controllers

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
)

// RandSource tạo nguồn ngẫu nhiên riêng cho từng request (rand.Rand không an toàn khi dùng chung).
type RandSource func() *rand.Rand

type LessonController struct {
	lessons *services.LessonService
	session *services.SessionService
	rng     RandSource
	log     *logrus.Logger
}

func NewLessonController(lessons *services.LessonService, session *services.SessionService, rng RandSource, log *logrus.Logger) *LessonController {
	return &LessonController{lessons: lessons, session: session, rng: rng, log: log}
}

func lessonIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondMessage(c, http.StatusNotFound, models.ErrLessonNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/lessons?type=&language=&level=&sort=&fields=
func (ctl *LessonController) List(c *gin.Context) {
	lessons, err := ctl.lessons.List(c.Request.Context(), services.LessonListParams{
		Type:     c.Query("type"),
		Language: c.Query("language"),
		Level:    c.Query("level"),
		Sort:     c.Query("sort"),
		Fields:   c.Query("fields"),
	})
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, lessons)
}

// GET /api/lessons/:id/start
func (ctl *LessonController) Start(c *gin.Context) {
	lessonID, ok := lessonIDParam(c, "id")
	if !ok {
		return
	}
	result, err := ctl.session.StartLesson(c.Request.Context(), middleware.UserID(c), lessonID)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	var progress any
	if result.Progress != nil {
		progress = result.Progress.View()
	}
	respondOK(c, http.StatusOK, gin.H{
		"masterLesson": result.Lesson,
		"userProgress": progress,
	})
}

// GET /api/lessons/:id/quiz-questions
func (ctl *LessonController) QuizQuestions(c *gin.Context) {
	lessonID, ok := lessonIDParam(c, "id")
	if !ok {
		return
	}
	quiz, err := ctl.lessons.QuizQuestions(c.Request.Context(), lessonID, ctl.rng())
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, quiz)
}

// GET /api/grammar/library?language=
func (ctl *LessonController) GrammarLibrary(c *gin.Context) {
	topics, err := ctl.lessons.GrammarLibrary(c.Request.Context(), c.Query("language"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, topics)
}

// GET /api/idioms?language=
func (ctl *LessonController) IdiomLibrary(c *gin.Context) {
	categories, err := ctl.lessons.IdiomLibrary(c.Request.Context(), c.Query("language"))
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

type GrammarSubmitInput struct {
	LessonID uuid.UUID                  `json:"lessonId" binding:"required"`
	Answers  map[string]services.Answer `json:"answers" binding:"required"`
}

// POST /api/grammar/submit-answers
func (ctl *LessonController) SubmitGrammar(c *gin.Context) {
	var input GrammarSubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	result, err := ctl.lessons.SubmitGrammar(c.Request.Context(), input.LessonID, input.Answers)
	if err != nil {
		respondError(c, ctl.log, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
