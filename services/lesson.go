package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/vnkhanh/engchi-backend/models"
)

const maxQuizQuestions = 50

var sortColumns = map[string]string{
	"order":     "sort_order",
	"level":     "level",
	"title":     "title",
	"createdAt": "created_at",
	"version":   "version",
}

const defaultSort = "order level title"

// ParseSort đọc chuỗi dạng "order,-title" hoặc "order level title".
func ParseSort(raw string) ([]models.SortField, error) {
	if strings.TrimSpace(raw) == "" {
		raw = defaultSort
	}
	keys := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	fields := make([]models.SortField, 0, len(keys))
	for _, key := range keys {
		desc := strings.HasPrefix(key, "-")
		col, ok := sortColumns[strings.TrimPrefix(key, "-")]
		if !ok {
			return nil, fmt.Errorf("%w: cannot sort by %q", models.ErrValidation, key)
		}
		fields = append(fields, models.SortField{Column: col, Desc: desc})
	}
	return fields, nil
}

type LessonListParams struct {
	Type     string
	Language string
	Level    string
	Sort     string
	Fields   string
}

type GrammarTopic struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Order         int                 `json:"order"`
	GrammarTheory []models.TheoryNode `json:"grammarTheory"`
}

type GrammarQuiz struct {
	TopicTitle string            `json:"topicTitle"`
	Questions  []models.Question `json:"questions"`
}

type GrammarResult struct {
	Results      map[string]QuestionResult `json:"results"`
	CorrectCount int                       `json:"correctCount"`
	Total        int                       `json:"total"`
}

type LessonService struct {
	lessons LessonRepository
}

func NewLessonService(lessons LessonRepository) *LessonService {
	return &LessonService{lessons: lessons}
}

func (s *LessonService) List(ctx context.Context, p LessonListParams) ([]models.LessonSummary, error) {
	sort, err := ParseSort(p.Sort)
	if err != nil {
		return nil, err
	}
	q := models.LessonQuery{
		Type:       models.LessonType(p.Type),
		Language:   models.Language(p.Language),
		Level:      p.Level,
		Sort:       sort,
		ActiveOnly: true,
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown lesson type %q", models.ErrValidation, p.Type)
	}
	if q.Language != "" && !q.Language.Valid() {
		return nil, fmt.Errorf("%w: unknown language %q", models.ErrValidation, p.Language)
	}

	withContent := lo.Contains(strings.FieldsFunc(p.Fields, func(r rune) bool { return r == ',' || r == ' ' }), "content")
	lessons, err := s.lessons.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return lo.Map(lessons, func(l models.Lesson, _ int) models.LessonSummary {
		return l.Summary(withContent)
	}), nil
}

func (s *LessonService) GrammarLibrary(ctx context.Context, language string) ([]GrammarTopic, error) {
	lang := models.Language(language)
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: language query parameter is required", models.ErrValidation)
	}
	lessons, err := s.lessons.ListByTypeLanguage(ctx, models.LessonGrammar, lang)
	if err != nil {
		return nil, err
	}
	return lo.Map(lessons, func(l models.Lesson, _ int) GrammarTopic {
		return GrammarTopic{
			ID:            l.ID,
			Title:         l.Title,
			Description:   l.Description,
			Order:         l.Order,
			GrammarTheory: l.Content.Data().GrammarTheory,
		}
	}), nil
}

// IdiomLibrary trả về các nhóm thành ngữ của ngôn ngữ; rỗng khi chưa có bài idiom.
func (s *LessonService) IdiomLibrary(ctx context.Context, language string) ([]models.IdiomCategory, error) {
	lang := models.Language(language)
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: language query parameter is required", models.ErrValidation)
	}
	lessons, err := s.lessons.ListByTypeLanguage(ctx, models.LessonIdiom, lang)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 || len(lessons[0].Content.Data().Categories) == 0 {
		return []models.IdiomCategory{}, nil
	}
	return lessons[0].Content.Data().Categories, nil
}

func (s *LessonService) grammarLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Type != models.LessonGrammar || len(lesson.Content.Data().GrammarQuestions) == 0 {
		return nil, fmt.Errorf("%w: grammar lesson with questions", models.ErrLessonNotFound)
	}
	return lesson, nil
}

// QuizQuestions xáo trộn câu hỏi ngữ pháp mỗi lần gọi, tối đa 50 câu.
func (s *LessonService) QuizQuestions(ctx context.Context, lessonID uuid.UUID, rng *rand.Rand) (*GrammarQuiz, error) {
	lesson, err := s.grammarLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	questions := append([]models.Question(nil), lesson.Content.Data().GrammarQuestions...)
	rng.Shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	if len(questions) > maxQuizQuestions {
		questions = questions[:maxQuizQuestions]
	}
	return &GrammarQuiz{TopicTitle: lesson.Title, Questions: questions}, nil
}

// SubmitGrammar chỉ chấm các câu đã trả lời, không ghi tiến độ.
func (s *LessonService) SubmitGrammar(ctx context.Context, lessonID uuid.UUID, answers map[string]Answer) (*GrammarResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers are required", models.ErrValidation)
	}
	lesson, err := s.grammarLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	answered := lo.Filter(lesson.Content.Data().GrammarQuestions, func(q models.Question, _ int) bool {
		_, ok := answers[q.ID]
		return ok
	})
	if len(answered) != len(answers) {
		return nil, models.ErrQuestionNotFound
	}
	results := GradeQuestions(answered, answers)
	correct := lo.CountBy(lo.Values(results), func(r QuestionResult) bool { return r.IsCorrect })
	return &GrammarResult{Results: results, CorrectCount: correct, Total: len(results)}, nil
}
