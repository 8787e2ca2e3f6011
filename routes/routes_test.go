package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vnkhanh/engchi-backend/config"
	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
	"github.com/vnkhanh/engchi-backend/utils"
)

const (
	jwtSecret = "integration-secret"
	cryptoKey = "0123456789abcdef0123456789abcdef"
)

type stubGrader struct {
	fail    bool
	keys    []string
	vocabed int
}

func (g *stubGrader) GradeTranslation(ctx context.Context, apiKey string, task services.TranslationTask) (*services.TranslationGrade, error) {
	g.keys = append(g.keys, apiKey)
	if g.fail {
		return nil, errors.New("quota exceeded for key " + apiKey)
	}
	return &services.TranslationGrade{Score: 70, Feedback: "<h2>Khá</h2>"}, nil
}

func (g *stubGrader) CheckVocab(ctx context.Context, apiKey string, lang models.Language, pairs []services.WordPair) ([]bool, error) {
	g.vocabed++
	return make([]bool, len(pairs)), nil
}

type stubGoogle struct{}

func (stubGoogle) Verify(ctx context.Context, idToken string) (*services.GoogleIdentity, error) {
	return nil, errors.New("disabled")
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	grader *stubGrader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), config.GormConfig(log))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	grader := &stubGrader{}
	deps := NewDeps(db, External{
		Grader: grader,
		Google: stubGoogle{},
		TTS:    services.NewPronunciationService(""),
		Settings: services.AuthSettings{
			JWTSecret:     jwtSecret,
			SetupSecret:   jwtSecret + ":setup",
			TokenTTL:      time.Hour,
			SetupTTL:      time.Minute,
			EncryptionKey: cryptoKey,
		},
		Rand: func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	}, log)
	return &testServer{t: t, db: db, router: SetupRouter(gin.New(), db, deps), grader: grader}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) call(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	code, env := s.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "learner", "email": email, "password": "secret1", "aiApiKey": "sk-" + email,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	return decode[map[string]string](s.t, env)["token"]
}

func (s *testServer) admin() string {
	s.t.Helper()
	u := &models.User{Username: "admin", Email: uuid.NewString() + "@admin.test", Role: models.RoleAdmin, ProfileComplete: true}
	require.NoError(s.t, s.db.Create(u).Error)
	tok, err := utils.GenerateToken(jwtSecret, u.ID.String(), string(u.Role), utils.PurposeAccess, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) importLessons(token string, lessons ...gin.H) {
	s.t.Helper()
	code, env := s.call(http.MethodPost, "/api/admin/lessons", token, lessons)
	require.Equal(s.t, http.StatusOK, code, env.Message)
}

func (s *testServer) lessonID(lessonType string) string {
	s.t.Helper()
	code, env := s.call(http.MethodGet, "/api/lessons?type="+lessonType, s.register(uuid.NewString()+"@x.test"), nil)
	require.Equal(s.t, http.StatusOK, code)
	list := decode[[]models.LessonSummary](s.t, env)
	require.NotEmpty(s.t, list)
	return list[0].ID.String()
}

var (
	translationLesson = gin.H{
		"title": "Greetings", "language": "en", "type": "translation", "level": "A1",
		"content": gin.H{"questions": []gin.H{{"id": "q1", "source": "Hello", "suggestedTranslation": "Xin chào"}}},
	}
	vocabLesson = gin.H{
		"title": "Fruit", "language": "en", "type": "vocab", "level": "A1",
		"content": gin.H{"words": []gin.H{{"word": "apple", "meaning": "quả táo"}, {"word": "pear", "meaning": "quả lê"}}},
	}
	readingLesson = gin.H{
		"title": "Paris", "language": "en", "type": "reading",
		"content": gin.H{"articles": []gin.H{{
			"id": "a1", "title": "Paris", "articleText": "Paris is the capital of France.",
			"questions": []gin.H{{"id": "r1", "qType": "fill_in_blank", "prompt": "Capital?", "answers": []string{"Paris"}}},
		}}},
	}
)

func TestPingAndHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"ok"`)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register("lan@example.com")

	code, env := s.call(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[map[string]any](t, env)
	assert.Equal(t, "lan@example.com", me["email"])
	assert.NotContains(t, string(env.Data), "sk-lan")
	assert.NotContains(t, string(env.Data), "password")

	code, env = s.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "x", "email": "lan@example.com", "password": "secret1", "aiApiKey": "k",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, _ = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "lan@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "lan@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, decode[map[string]string](t, env)["token"])

	code, _ = s.call(http.MethodPost, "/api/auth/google", "", gin.H{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodGet, "/api/lessons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminImportRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.call(http.MethodPost, "/api/admin/lessons", s.register("lan@example.com"), []gin.H{vocabLesson})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.call(http.MethodPost, "/api/admin/lessons", s.admin(), gin.H{"title": "Bad", "language": "en", "type": "listening"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "invalid lesson type")
}

func TestTranslationPracticeFlow(t *testing.T) {
	s := newTestServer(t)
	s.importLessons(s.admin(), translationLesson)
	lessonID := s.lessonID("translation")
	token := s.register("lan@example.com")

	code, env := s.call(http.MethodGet, "/api/translation/"+lessonID+"/next-question", token, nil)
	assert.Equal(t, http.StatusNotFound, code, "lesson must be started first")
	assert.Contains(t, env.Message, "start the lesson")

	code, env = s.call(http.MethodGet, "/api/lessons/"+lessonID+"/start", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	start := decode[struct {
		UserProgress models.ProgressView `json:"userProgress"`
	}](t, env)
	assert.Equal(t, []models.ItemProgress{{ID: "q1", Counter: 0}}, start.UserProgress.ProgressData.Items)

	code, env = s.call(http.MethodGet, "/api/translation/"+lessonID+"/next-question", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "q1", decode[models.TranslationItem](t, env).ID)

	code, env = s.call(http.MethodPost, "/api/translation/submit-answer", token, gin.H{
		"lessonId": lessonID, "questionId": "q1", "userTranslation": "Chào bạn",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	result := decode[services.TranslationResult](t, env)
	assert.Equal(t, 70.0, result.Score)
	assert.Equal(t, "Xin chào", result.SuggestedTranslation)
	assert.Equal(t, []string{"sk-lan@example.com"}, s.grader.keys)

	code, env = s.call(http.MethodGet, "/api/lessons/"+lessonID+"/start", token, nil)
	require.Equal(t, http.StatusOK, code)
	start = decode[struct {
		UserProgress models.ProgressView `json:"userProgress"`
	}](t, env)
	assert.Equal(t, []models.ItemProgress{{ID: "q1", Counter: 1}}, start.UserProgress.ProgressData.Items)

	s.grader.fail = true
	code, env = s.call(http.MethodPost, "/api/translation/submit-answer", token, gin.H{
		"lessonId": lessonID, "questionId": "q1", "userTranslation": "Chào",
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error", env.Message)

	code, _ = s.call(http.MethodPost, "/api/translation/submit-answer", token, gin.H{
		"lessonId": lessonID, "questionId": "q1", "userTranslation": "Chào", "mode": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReadingFlow(t *testing.T) {
	s := newTestServer(t)
	s.importLessons(s.admin(), readingLesson)
	lessonID := s.lessonID("reading")
	token := s.register("lan@example.com")

	code, _ := s.call(http.MethodGet, "/api/lessons/"+lessonID+"/start", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := s.call(http.MethodGet, "/api/reading/"+lessonID+"/next-article", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a1", decode[models.Article](t, env).ID)

	code, env = s.call(http.MethodPost, "/api/reading/submit-answers", token, gin.H{
		"lessonId": lessonID, "articleId": "a1", "answers": gin.H{"r1": " paris "},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	results := decode[map[string]services.QuestionResult](t, env)
	assert.True(t, results["r1"].IsCorrect)

	code, _ = s.call(http.MethodPost, "/api/reading/submit-answers", token, gin.H{
		"lessonId": lessonID, "articleId": "zz", "answers": gin.H{},
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestVocabReviewFlow(t *testing.T) {
	s := newTestServer(t)
	s.importLessons(s.admin(), vocabLesson)
	lessonID := s.lessonID("vocab")
	token := s.register("lan@example.com")

	code, env := s.call(http.MethodGet, "/api/lessons/"+lessonID+"/start", token, nil)
	require.Equal(t, http.StatusOK, code)
	progressID := decode[struct {
		UserProgress models.ProgressView `json:"userProgress"`
	}](t, env).UserProgress.ID.String()

	update := func(tok, action string, payload any) (int, envelope) {
		return s.call(http.MethodPut, "/api/progress/"+progressID, tok, gin.H{"action": action, "payload": payload})
	}

	code, env = update(token, "review_words", gin.H{"words": []gin.H{{"word": "apple", "masterLessonId": lessonID}}})
	require.Equal(t, http.StatusOK, code, env.Message)
	code, _ = update(token, "review_words", gin.H{"words": []gin.H{{"word": "apple"}}})
	require.Equal(t, http.StatusOK, code)

	code, env = s.call(http.MethodGet, "/api/vocab/review-words?language=en", token, nil)
	require.Equal(t, http.StatusOK, code)
	review := decode[[]services.ReviewItem](t, env)
	require.Len(t, review, 1)
	assert.Equal(t, "quả táo", review[0].WordData.Meaning)

	code, env = s.call(http.MethodGet, "/api/vocab/review-count?language=en", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	code, env = update(token, "remove_review_words", gin.H{"words": []string{"apple"}})
	require.Equal(t, http.StatusOK, code)
	view := decode[models.ProgressView](t, env)
	assert.Equal(t, []string{"apple"}, view.ProgressData.MasteredWords)
	assert.Empty(t, view.ProgressData.ReviewWords)

	code, env = s.call(http.MethodGet, "/api/vocab/"+lessonID+"/practice-words", token, nil)
	require.Equal(t, http.StatusOK, code)
	words := decode[[]models.VocabWord](t, env)
	require.Len(t, words, 1)
	assert.Equal(t, "pear", words[0].Word)

	code, env = s.call(http.MethodGet, "/api/vocab/"+lessonID+"/practice-words?limit=1", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.VocabWord](t, env), 1)
	for _, bad := range []string{"abc", "0", "-3"} {
		code, _ = s.call(http.MethodGet, "/api/vocab/"+lessonID+"/practice-words?limit="+bad, token, nil)
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}

	code, env = update(token, "rename_words", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "invalid action")

	code, _ = update(s.register("other@example.com"), "delete_words", gin.H{"words": []string{"pear"}})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.call(http.MethodPut, "/api/progress/"+uuid.NewString(), token, gin.H{"action": "delete_words", "payload": gin.H{"words": []string{}}})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAICheck(t *testing.T) {
	s := newTestServer(t)
	s.importLessons(s.admin(), vocabLesson)
	token := s.register("lan@example.com")

	code, env := s.call(http.MethodPost, "/api/ai/check", token, gin.H{
		"checkType": "vocab",
		"payload": gin.H{"sourceLanguage": "en", "wordPairs": []gin.H{
			{"sourceWord": "apple", "userInput": "Quả táo"},
			{"sourceWord": "pear", "userInput": "trái cây"},
		}},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.JSONEq(t, `[{"isCorrect":true},{"isCorrect":false}]`, string(env.Data))
	assert.Equal(t, 1, s.grader.vocabed)

	code, env = s.call(http.MethodPost, "/api/ai/check", token, gin.H{"checkType": "essay", "payload": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "invalid check type")
}

func TestIdiomLibrary(t *testing.T) {
	s := newTestServer(t)
	s.importLessons(s.admin(), gin.H{
		"title": "Common idioms", "language": "en", "type": "idiom",
		"content": gin.H{"categories": []gin.H{{
			"categoryTitle": "Weather",
			"idioms":        []gin.H{{"id": "i1", "idiom": "under the weather", "meaning": "hơi mệt"}},
		}}},
	})
	token := s.register("lan@example.com")

	code, env := s.call(http.MethodGet, "/api/idioms?language=en", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	categories := decode[[]models.IdiomCategory](t, env)
	require.Len(t, categories, 1)
	assert.Equal(t, "under the weather", categories[0].Idioms[0].Idiom)

	code, env = s.call(http.MethodGet, "/api/idioms?language=zh", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = s.call(http.MethodGet, "/api/idioms", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.call(http.MethodGet, "/api/idioms?language=en", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLessonNotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.register("lan@example.com")

	code, _ := s.call(http.MethodGet, "/api/lessons/"+uuid.NewString()+"/start", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.call(http.MethodGet, "/api/lessons/not-a-uuid/start", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
