package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

type StartResult struct {
	Lesson   *models.Lesson
	Progress *models.UserProgress // nil với bài ngữ pháp
}

type SessionService struct {
	lessons  LessonRepository
	progress ProgressRepository
	log      *logrus.Logger
}

func NewSessionService(lessons LessonRepository, progress ProgressRepository, log *logrus.Logger) *SessionService {
	return &SessionService{lessons: lessons, progress: progress, log: log}
}

// StartLesson trả về nội dung bài học và bản ghi tiến độ đã được đồng bộ với nội dung hiện tại.
func (s *SessionService) StartLesson(ctx context.Context, userID, lessonID uuid.UUID) (*StartResult, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	switch lesson.Type {
	case models.LessonGrammar, models.LessonIdiom:
		return &StartResult{Lesson: lesson}, nil
	case models.LessonVocab, models.LessonTranslation, models.LessonReading:
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidLessonType, lesson.Type)
	}

	progress, err := s.progress.FindByUserLesson(ctx, userID, lessonID)
	switch {
	case errors.Is(err, models.ErrProgressNotFound):
		progress, err = s.create(ctx, userID, lesson)
		if err != nil {
			return nil, err
		}
		return &StartResult{Lesson: lesson, Progress: progress}, nil
	case err != nil:
		return nil, err
	}

	if err := s.Reconcile(ctx, lesson, progress); err != nil {
		return nil, err
	}
	return &StartResult{Lesson: lesson, Progress: progress}, nil
}

func (s *SessionService) create(ctx context.Context, userID uuid.UUID, lesson *models.Lesson) (*models.UserProgress, error) {
	ids, kind := lesson.ItemIDs()
	progress := &models.UserProgress{
		UserID:   userID,
		LessonID: lesson.ID,
		Status:   models.StatusInProgress,
		Items:    newItems(MissingItemIDs(ids, nil), kind),
	}
	err := s.progress.Create(ctx, progress)
	if errors.Is(err, models.ErrProgressExists) {
		// Hai request mở bài cùng lúc: lấy bản ghi của request thắng rồi đồng bộ tiếp
		s.log.WithFields(logrus.Fields{"user": userID, "lesson": lesson.ID}).Info("progress đã được tạo bởi request khác")
		existing, err := s.progress.FindByUserLesson(ctx, userID, lesson.ID)
		if err != nil {
			return nil, err
		}
		if err := s.Reconcile(ctx, lesson, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// Reconcile bổ sung các item mới của bài học vào tiến độ với bộ đếm 0.
// Chỉ ghi xuống DB khi thật sự thiếu.
func (s *SessionService) Reconcile(ctx context.Context, lesson *models.Lesson, progress *models.UserProgress) error {
	ids, kind := lesson.ItemIDs()
	missing := MissingItemIDs(ids, progress.Items)
	if len(missing) == 0 {
		return nil
	}
	items := newItems(missing, kind)
	if err := s.progress.AppendItems(ctx, progress.ID, items); err != nil {
		return err
	}
	progress.Items = append(progress.Items, items...)
	s.log.WithFields(logrus.Fields{
		"progress": progress.ID,
		"lesson":   lesson.ID,
		"added":    len(missing),
	}).Info("đồng bộ tiến độ với nội dung bài học")
	return nil
}
