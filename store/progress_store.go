package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/engchi-backend/models"
)

type ProgressStore struct {
	db *gorm.DB
}

func NewProgressStore(db *gorm.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, item_id ASC") }).
		Preload("MasteredWords", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, word ASC") }).
		Preload("ReviewWords", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, word ASC") })
}

func (s *ProgressStore) FindByUserLesson(ctx context.Context, userID, lessonID uuid.UUID) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.preload(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProgressNotFound
		}
		return nil, fmt.Errorf("find progress of user %s lesson %s: %w", userID, lessonID, err)
	}
	return &p, nil
}

func (s *ProgressStore) FindByID(ctx context.Context, id uuid.UUID) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := s.preload(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProgressNotFound
		}
		return nil, fmt.Errorf("find progress %s: %w", id, err)
	}
	return &p, nil
}

// Create lưu bản ghi kèm các item. Trùng (user, lesson) trả về ErrProgressExists.
func (s *ProgressStore) Create(ctx context.Context, p *models.UserProgress) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrProgressExists
		}
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) AppendItems(ctx context.Context, progressID uuid.UUID, items []models.ProgressItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ProgressID = progressID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error; err != nil {
			return fmt.Errorf("append progress items: %w", err)
		}
		return touch(tx, progressID)
	})
}

// IncrementCounter tăng bộ đếm của một item bằng một câu UPDATE nguyên tử.
// Trả về false nếu không có item nào khớp.
func (s *ProgressStore) IncrementCounter(ctx context.Context, userID, lessonID uuid.UUID, kind models.ItemKind, itemID string) (bool, error) {
	owner := s.db.Model(&models.UserProgress{}).Select("id").
		Where("user_id = ? AND lesson_id = ?", userID, lessonID)
	res := s.db.WithContext(ctx).Model(&models.ProgressItem{}).
		Where("progress_id IN (?) AND item_id = ? AND kind = ?", owner, itemID, kind).
		UpdateColumn("counter", gorm.Expr("counter + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("increment counter %s/%s: %w", kind, itemID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *ProgressStore) AddMasteredWords(ctx context.Context, progressID uuid.UUID, words []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addMastered(tx, progressID, words)
	})
}

// AddReviewWords: từ đã có trong danh sách ôn tập thì giữ bản ghi cũ.
func (s *ProgressStore) AddReviewWords(ctx context.Context, progressID uuid.UUID, entries []models.ReviewWord) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].ProgressID = progressID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error; err != nil {
			return fmt.Errorf("add review words: %w", err)
		}
		return touch(tx, progressID)
	})
}

func (s *ProgressStore) UnqueueAndMaster(ctx context.Context, progressID uuid.UUID, words []string) error {
	if len(words) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("progress_id = ? AND word IN ?", progressID, words).Delete(&models.ReviewWord{}).Error
		if err != nil {
			return fmt.Errorf("remove review words: %w", err)
		}
		return addMastered(tx, progressID, words)
	})
}

func (s *ProgressStore) reviewQuery(ctx context.Context, userID uuid.UUID, lang models.Language) *gorm.DB {
	return s.db.WithContext(ctx).Table("progress_review_words AS r").
		Joins("JOIN user_progress p ON p.id = r.progress_id").
		Joins("JOIN lessons l ON l.id = p.lesson_id").
		Where("p.user_id = ? AND l.language = ?", userID, lang)
}

// ListReviewWords trả về các từ ôn tập của user theo ngôn ngữ bài học, chưa khử trùng lặp.
func (s *ProgressStore) ListReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) ([]models.ReviewWord, error) {
	var rows []models.ReviewWord
	err := s.reviewQuery(ctx, userID, lang).
		Select("r.progress_id, r.word, r.lesson_id, r.created_at").
		Order("p.created_at ASC, r.created_at ASC, r.word ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list review words: %w", err)
	}
	return rows, nil
}

func (s *ProgressStore) CountReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) (int64, error) {
	var n int64
	if err := s.reviewQuery(ctx, userID, lang).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count review words: %w", err)
	}
	return n, nil
}

// DeleteAll xoá toàn bộ tiến độ (dùng cho lệnh purge).
func (s *ProgressStore) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&models.ProgressItem{}, &models.MasteredWord{}, &models.ReviewWord{}} {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		res := all.Delete(&models.UserProgress{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete progress: %w", err)
	}
	return deleted, nil
}

func addMastered(tx *gorm.DB, progressID uuid.UUID, words []string) error {
	if len(words) == 0 {
		return nil
	}
	rows := make([]models.MasteredWord, 0, len(words))
	for _, w := range words {
		rows = append(rows, models.MasteredWord{ProgressID: progressID, Word: w})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("add mastered words: %w", err)
	}
	return touch(tx, progressID)
}

func touch(tx *gorm.DB, progressID uuid.UUID) error {
	return tx.Model(&models.UserProgress{}).Where("id = ?", progressID).
		UpdateColumn("updated_at", time.Now()).Error
}
