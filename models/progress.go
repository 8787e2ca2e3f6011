package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

type ItemKind string

const (
	ItemQuestion ItemKind = "question"
	ItemArticle  ItemKind = "article"
)

// UserProgress: mỗi cặp (user, lesson) chỉ có một bản ghi
type UserProgress struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_lesson" json:"user"`
	LessonID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_lesson" json:"lesson"`
	Status    ProgressStatus `gorm:"type:varchar(20);not null;default:'in_progress'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"lastUpdatedAt"`

	Items         []ProgressItem `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"-"`
	MasteredWords []MasteredWord `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"-"`
	ReviewWords   []ReviewWord   `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProgressItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ProgressID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_item" json:"-"`
	ItemID     string    `gorm:"size:100;not null;uniqueIndex:idx_progress_item" json:"itemId"`
	Kind       ItemKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Counter    int       `gorm:"not null;default:0" json:"counter"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

func (i *ProgressItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type MasteredWord struct {
	ProgressID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Word       string    `gorm:"size:255;primaryKey"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (MasteredWord) TableName() string { return "progress_mastered_words" }

type ReviewWord struct {
	ProgressID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Word       string    `gorm:"size:255;primaryKey" json:"word"`
	LessonID   uuid.UUID `gorm:"type:uuid;not null" json:"masterLessonId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

func (ReviewWord) TableName() string { return "progress_review_words" }

// ItemProgress là một mục trong danh sách tiến độ trả về client
type ItemProgress struct {
	ID      string `json:"id"`
	Counter int    `json:"counter"`
}

type ProgressData struct {
	MasteredWords   []string       `json:"deletedWords"`
	ReviewWords     []ReviewWord   `json:"reviewWords"`
	Items           []ItemProgress `json:"items"`
	ArticleProgress []ItemProgress `json:"articleProgress"`
}

type ProgressView struct {
	ID            uuid.UUID      `json:"id"`
	User          uuid.UUID      `json:"user"`
	Lesson        uuid.UUID      `json:"lesson"`
	Status        ProgressStatus `json:"status"`
	ProgressData  ProgressData   `json:"progressData"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt"`
}

// View chuyển bản ghi quan hệ sang dạng JSON của API
func (p *UserProgress) View() ProgressView {
	data := ProgressData{
		MasteredWords:   make([]string, 0, len(p.MasteredWords)),
		ReviewWords:     make([]ReviewWord, 0, len(p.ReviewWords)),
		Items:           []ItemProgress{},
		ArticleProgress: []ItemProgress{},
	}
	for _, w := range p.MasteredWords {
		data.MasteredWords = append(data.MasteredWords, w.Word)
	}
	data.ReviewWords = append(data.ReviewWords, p.ReviewWords...)
	for _, it := range p.Items {
		entry := ItemProgress{ID: it.ItemID, Counter: it.Counter}
		if it.Kind == ItemArticle {
			data.ArticleProgress = append(data.ArticleProgress, entry)
		} else {
			data.Items = append(data.Items, entry)
		}
	}
	return ProgressView{
		ID:            p.ID,
		User:          p.UserID,
		Lesson:        p.LessonID,
		Status:        p.Status,
		ProgressData:  data,
		LastUpdatedAt: p.UpdatedAt,
	}
}

func (p *UserProgress) MasteredSet() map[string]bool {
	set := make(map[string]bool, len(p.MasteredWords))
	for _, w := range p.MasteredWords {
		set[w.Word] = true
	}
	return set
}
