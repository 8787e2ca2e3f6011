package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/engchi-backend/models"
)

type LessonStore struct {
	db *gorm.DB
}

func NewLessonStore(db *gorm.DB) *LessonStore {
	return &LessonStore{db: db}
}

func (s *LessonStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrLessonNotFound
		}
		return nil, fmt.Errorf("find lesson %s: %w", id, err)
	}
	return &lesson, nil
}

func (s *LessonStore) List(ctx context.Context, q models.LessonQuery) ([]models.Lesson, error) {
	tx := s.db.WithContext(ctx).Model(&models.Lesson{})
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Language != "" {
		tx = tx.Where("language = ?", q.Language)
	}
	if q.Level != "" {
		tx = tx.Where("level = ?", q.Level)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	// Column đã được lọc qua whitelist ở tầng service
	for _, f := range q.Sort {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		tx = tx.Order(f.Column + " " + dir)
	}
	tx = tx.Order("id ASC")

	var lessons []models.Lesson
	if err := tx.Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *LessonStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Lesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var lessons []models.Lesson
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons by ids: %w", err)
	}
	return lessons, nil
}

// ListByTypeLanguage trả về bài học theo loại và ngôn ngữ, sắp xếp theo thứ tự rồi id.
func (s *LessonStore) ListByTypeLanguage(ctx context.Context, t models.LessonType, lang models.Language) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Where("type = ? AND language = ? AND is_active = ?", t, lang, true).
		Order("sort_order ASC").Order("id ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("list %s lessons (%s): %w", t, lang, err)
	}
	return lessons, nil
}

// Upsert tạo mới hoặc thay nội dung bài học có cùng (type, language, slug) và tăng version.
func (s *LessonStore) Upsert(ctx context.Context, lesson *models.Lesson) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Lesson
		err := tx.Where("type = ? AND language = ? AND slug = ?", lesson.Type, lesson.Language, lesson.Slug).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			if lesson.Version == 0 {
				lesson.Version = 1
			}
			if err := tx.Create(lesson).Error; err != nil {
				return err
			}
			// is_active có default true nên giá trị false bị bỏ qua khi INSERT
			if !lesson.IsActive {
				return tx.Model(lesson).Update("is_active", false).Error
			}
			return nil
		}
		if err != nil {
			return err
		}

		lesson.ID = existing.ID
		lesson.Version = existing.Version + 1
		lesson.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Select(
			"title", "description", "level", "sort_order", "content", "version", "is_active",
		).Updates(lesson).Error
	})
	if err != nil {
		return false, fmt.Errorf("upsert lesson %s/%s/%s: %w", lesson.Type, lesson.Language, lesson.Slug, err)
	}
	return created, nil
}

func (s *LessonStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Lesson{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete lessons: %w", res.Error)
	}
	return res.RowsAffected, nil
}
