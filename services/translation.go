package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

type Direction string

const (
	DirectionForward Direction = "foreign-to-vi"
	DirectionReverse Direction = "vi-to-foreign"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", DirectionForward:
		return DirectionForward, nil
	case DirectionReverse:
		return DirectionReverse, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", models.ErrValidation, s)
}

type TranslationSubmission struct {
	LessonID        uuid.UUID
	QuestionID      string
	UserTranslation string
	Mode            Direction
}

type TranslationResult struct {
	Score                float64 `json:"score"`
	Feedback             string  `json:"feedback"`
	SuggestedTranslation string  `json:"suggestedTranslation"`
}

type TranslationService struct {
	lessons  LessonRepository
	progress ProgressRepository
	grader   Grader
	log      *logrus.Logger
}

func NewTranslationService(lessons LessonRepository, progress ProgressRepository, grader Grader, log *logrus.Logger) *TranslationService {
	return &TranslationService{lessons: lessons, progress: progress, grader: grader, log: log}
}

func (s *TranslationService) lesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Type != models.LessonTranslation {
		return nil, fmt.Errorf("%w: translation lesson %s", models.ErrLessonNotFound, id)
	}
	return lesson, nil
}

// NextQuestion trả về câu được luyện ít nhất; nil khi bài không có câu nào.
func (s *TranslationService) NextQuestion(ctx context.Context, userID, lessonID uuid.UUID, rng *rand.Rand) (*models.TranslationItem, error) {
	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.FindByUserLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	ids, _ := lesson.ItemIDs()
	picked, ok := SelectLeastAttempted(liveItems(progress.Items, ids), rng)
	if !ok {
		return nil, nil
	}
	q, found := lesson.Content.Data().FindQuestion(picked.ItemID)
	if !found {
		return nil, models.ErrQuestionNotFound
	}
	return &q, nil
}

func (s *TranslationService) SubmitAnswer(ctx context.Context, userID uuid.UUID, sub TranslationSubmission, apiKey APIKeySource) (*TranslationResult, error) {
	if sub.QuestionID == "" || strings.TrimSpace(sub.UserTranslation) == "" {
		return nil, fmt.Errorf("%w: questionId and userTranslation are required", models.ErrValidation)
	}
	lesson, err := s.lesson(ctx, sub.LessonID)
	if err != nil {
		return nil, err
	}
	q, found := lesson.Content.Data().FindQuestion(sub.QuestionID)
	if !found {
		return nil, models.ErrQuestionNotFound
	}

	task := TranslationTask{Prompt: q.Source, Reference: q.SuggestedTranslation, UserAnswer: sub.UserTranslation}
	if sub.Mode == DirectionReverse {
		task.Prompt, task.Reference = q.SuggestedTranslation, q.Source
	}

	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	grade, err := s.grader.GradeTranslation(ctx, key, task)
	if err != nil {
		return nil, fmt.Errorf("grade translation: %w", err)
	}

	// Chỉ tăng bộ đếm sau khi chấm xong
	updated, err := s.progress.IncrementCounter(ctx, userID, lesson.ID, models.ItemQuestion, q.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.log.WithFields(logrus.Fields{"user": userID, "lesson": lesson.ID, "question": q.ID}).
			Warn("không tìm thấy tiến độ để tăng bộ đếm")
	}

	return &TranslationResult{
		Score:                grade.Score,
		Feedback:             grade.Feedback,
		SuggestedTranslation: task.Reference,
	}, nil
}
