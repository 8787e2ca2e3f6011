package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vnkhanh/engchi-backend/models"
)

type LessonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	List(ctx context.Context, q models.LessonQuery) ([]models.Lesson, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Lesson, error)
	ListByTypeLanguage(ctx context.Context, t models.LessonType, lang models.Language) ([]models.Lesson, error)
	Upsert(ctx context.Context, lesson *models.Lesson) (bool, error)
}

type ProgressRepository interface {
	FindByUserLesson(ctx context.Context, userID, lessonID uuid.UUID) (*models.UserProgress, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserProgress, error)
	Create(ctx context.Context, p *models.UserProgress) error
	AppendItems(ctx context.Context, progressID uuid.UUID, items []models.ProgressItem) error
	IncrementCounter(ctx context.Context, userID, lessonID uuid.UUID, kind models.ItemKind, itemID string) (bool, error)
	AddMasteredWords(ctx context.Context, progressID uuid.UUID, words []string) error
	AddReviewWords(ctx context.Context, progressID uuid.UUID, entries []models.ReviewWord) error
	UnqueueAndMaster(ctx context.Context, progressID uuid.UUID, words []string) error
	ListReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) ([]models.ReviewWord, error)
	CountReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) (int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
}
