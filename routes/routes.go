package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vnkhanh/engchi-backend/controllers"
	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
	"github.com/vnkhanh/engchi-backend/store"
)

// Deps gom các service cần cho router
type Deps struct {
	Auth        *services.AuthService
	Lessons     *services.LessonService
	Session     *services.SessionService
	Translation *services.TranslationService
	Reading     *services.ReadingService
	Vocab       *services.VocabService
	Review      *services.ReviewService
	AICheck     *services.AICheckService
	TTS         *services.PronunciationService
	Importer    *services.LessonImporter
	Rand        controllers.RandSource
	Log         *logrus.Logger
}

type External struct {
	Grader   services.Grader
	Google   services.GoogleVerifier
	TTS      *services.PronunciationService
	Settings services.AuthSettings
	Rand     controllers.RandSource
}

// NewDeps nối store gorm với các service.
func NewDeps(db *gorm.DB, ext External, log *logrus.Logger) Deps {
	lessons := store.NewLessonStore(db)
	progress := store.NewProgressStore(db)
	users := store.NewUserStore(db)

	vocab := services.NewVocabService(lessons, progress, ext.Grader, log)
	return Deps{
		Auth:        services.NewAuthService(users, ext.Google, ext.Settings),
		Lessons:     services.NewLessonService(lessons),
		Session:     services.NewSessionService(lessons, progress, log),
		Translation: services.NewTranslationService(lessons, progress, ext.Grader, log),
		Reading:     services.NewReadingService(lessons, progress, log),
		Vocab:       vocab,
		Review:      services.NewReviewService(lessons, progress, log),
		AICheck:     services.NewAICheckService(vocab),
		TTS:         ext.TTS,
		Importer:    services.NewLessonImporter(lessons, log),
		Rand:        ext.Rand,
		Log:         log,
	}
}

func SetupRouter(r *gin.Engine, db *gorm.DB, d Deps) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(db))

	authCtl := controllers.NewAuthController(d.Auth, d.Log)
	lessonCtl := controllers.NewLessonController(d.Lessons, d.Session, d.Rand, d.Log)
	progressCtl := controllers.NewProgressController(d.Review, d.Log)
	translationCtl := controllers.NewTranslationController(d.Translation, d.Rand, d.Log)
	readingCtl := controllers.NewReadingController(d.Reading, d.Rand, d.Log)
	vocabCtl := controllers.NewVocabController(d.Vocab, d.Review, d.Rand, d.Log)
	aiCtl := controllers.NewAIController(d.AICheck, d.Log)
	ttsCtl := controllers.NewTTSController(d.TTS, d.Log)
	adminCtl := controllers.NewAdminController(d.Importer, d.Log)

	protect := middleware.AuthMiddleware(d.Auth)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/google", authCtl.GoogleLogin)
		auth.POST("/complete-profile", middleware.SetupMiddleware(d.Auth), authCtl.CompleteProfile)
		auth.GET("/me", protect, authCtl.Me)
	}

	lessons := api.Group("/lessons", protect)
	{
		lessons.GET("", lessonCtl.List)
		lessons.GET("/:id/start", lessonCtl.Start)
		lessons.GET("/:id/quiz-questions", lessonCtl.QuizQuestions)
	}

	api.PUT("/progress/:progressId", protect, progressCtl.Update)

	translation := api.Group("/translation", protect)
	{
		translation.GET("/:lessonId/next-question", translationCtl.NextQuestion)
		translation.POST("/submit-answer", translationCtl.SubmitAnswer)
	}

	reading := api.Group("/reading", protect)
	{
		reading.GET("/:lessonId/next-article", readingCtl.NextArticle)
		reading.POST("/submit-answers", readingCtl.SubmitAnswers)
	}

	grammar := api.Group("/grammar", protect)
	{
		grammar.GET("/library", lessonCtl.GrammarLibrary)
		grammar.GET("/:id/quiz-questions", lessonCtl.QuizQuestions)
		grammar.POST("/submit-answers", lessonCtl.SubmitGrammar)
	}

	api.GET("/idioms", protect, lessonCtl.IdiomLibrary)

	vocab := api.Group("/vocab", protect)
	{
		vocab.GET("/review-words", vocabCtl.ReviewWords)
		vocab.GET("/review-count", vocabCtl.ReviewCount)
		vocab.GET("/:lessonId/practice-words", vocabCtl.PracticeWords)
	}

	api.POST("/ai/check", protect, aiCtl.Check)
	api.POST("/tts", protect, ttsCtl.Pronounce)

	admin := api.Group("/admin", middleware.RequireRoles(d.Auth, models.RoleAdmin))
	{
		admin.POST("/lessons", adminCtl.ImportLessons)
	}

	return r
}
