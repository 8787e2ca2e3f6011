package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

type ReadingSubmission struct {
	LessonID  uuid.UUID
	ArticleID string
	Answers   map[string]Answer
}

type ReadingService struct {
	lessons  LessonRepository
	progress ProgressRepository
	log      *logrus.Logger
}

func NewReadingService(lessons LessonRepository, progress ProgressRepository, log *logrus.Logger) *ReadingService {
	return &ReadingService{lessons: lessons, progress: progress, log: log}
}

func (s *ReadingService) lesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Type != models.LessonReading {
		return nil, fmt.Errorf("%w: reading lesson %s", models.ErrLessonNotFound, id)
	}
	return lesson, nil
}

// NextArticle trả về bài đọc được luyện ít nhất; nil khi bài học chưa có bài đọc nào.
func (s *ReadingService) NextArticle(ctx context.Context, userID, lessonID uuid.UUID, rng *rand.Rand) (*models.Article, error) {
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
	article, found := lesson.Content.Data().FindArticle(picked.ItemID)
	if !found {
		return nil, models.ErrArticleNotFound
	}
	return &article, nil
}

// SubmitAnswers chấm toàn bộ câu hỏi của bài đọc rồi tăng bộ đếm của bài đọc đó.
func (s *ReadingService) SubmitAnswers(ctx context.Context, userID uuid.UUID, sub ReadingSubmission) (map[string]QuestionResult, error) {
	if sub.ArticleID == "" || sub.Answers == nil {
		return nil, fmt.Errorf("%w: articleId and answers are required", models.ErrValidation)
	}
	lesson, err := s.lesson(ctx, sub.LessonID)
	if err != nil {
		return nil, err
	}
	article, found := lesson.Content.Data().FindArticle(sub.ArticleID)
	if !found {
		return nil, models.ErrArticleNotFound
	}

	results := GradeQuestions(article.Questions, sub.Answers)

	updated, err := s.progress.IncrementCounter(ctx, userID, lesson.ID, models.ItemArticle, article.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.log.WithFields(logrus.Fields{"user": userID, "lesson": lesson.ID, "article": article.ID}).
			Warn("không tìm thấy tiến độ để tăng bộ đếm")
	}
	return results, nil
}
