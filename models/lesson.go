package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageChinese
}

type LessonType string

const (
	LessonVocab       LessonType = "vocab"
	LessonTranslation LessonType = "translation"
	LessonReading     LessonType = "reading"
	LessonGrammar     LessonType = "grammar"
	LessonIdiom       LessonType = "idiom"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVocab, LessonTranslation, LessonReading, LessonGrammar, LessonIdiom:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "multiple_choice_single"
	QuestionMultiChoice  QuestionType = "multiple_choice_multiple"
	QuestionFillInBlank  QuestionType = "fill_in_blank"
)

// Lesson là nội dung bài học (chỉ đọc với người học)
type Lesson struct {
	ID          uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                            `gorm:"size:255;not null" json:"title"`
	Description string                            `gorm:"type:text" json:"description"`
	Slug        string                            `gorm:"size:255;not null;uniqueIndex:idx_lesson_key" json:"slug"`
	Language    Language                          `gorm:"type:varchar(5);not null;uniqueIndex:idx_lesson_key;index:idx_lesson_listing" json:"language"`
	Type        LessonType                        `gorm:"type:varchar(20);not null;uniqueIndex:idx_lesson_key;index:idx_lesson_listing" json:"type"`
	Level       string                            `gorm:"size:20" json:"level"`
	Order       int                               `gorm:"column:sort_order;default:0;index:idx_lesson_listing" json:"order"`
	Content     datatypes.JSONType[LessonContent] `json:"content"`
	Version     int                               `gorm:"not null;default:1" json:"version"`
	IsActive    bool                              `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time                         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type LessonContent struct {
	Words            []VocabWord       `json:"words,omitempty"`
	Questions        []TranslationItem `json:"questions,omitempty"`
	Articles         []Article         `json:"articles,omitempty"`
	GrammarTheory    []TheoryNode      `json:"grammarTheory,omitempty"`
	GrammarQuestions []Question        `json:"grammarQuestions,omitempty"`
	Categories       []IdiomCategory   `json:"categories,omitempty"`
}

type VocabWord struct {
	Word      string `json:"word"`
	Meaning   string `json:"meaning"`
	Pronounce string `json:"pronounce,omitempty"`
}

type TranslationItem struct {
	ID                   string `json:"id"`
	Source               string `json:"source"`
	SuggestedTranslation string `json:"suggestedTranslation"`
}

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ArticleText string     `json:"articleText"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID              string       `json:"id"`
	QType           QuestionType `json:"qType"`
	Prompt          string       `json:"prompt"`
	Options         []Option     `json:"options,omitempty"`
	Answers         []string     `json:"answers,omitempty"`
	Explanation     string       `json:"explanation,omitempty"`
	RelatedTheoryID string       `json:"relatedTheoryId,omitempty"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type IdiomCategory struct {
	CategoryTitle string  `json:"categoryTitle"`
	Idioms        []Idiom `json:"idioms"`
}

type Idiom struct {
	ID        string `json:"id"`
	Idiom     string `json:"idiom"`
	Meaning   string `json:"meaning"`
	Pronounce string `json:"pronounce,omitempty"`
	Example   string `json:"example,omitempty"`
}

// TheoryNode: cây lý thuyết ngữ pháp
type TheoryNode struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Order       int          `json:"order"`
	ContentHTML string       `json:"contentHTML,omitempty"`
	Children    []TheoryNode `json:"children,omitempty"`
}

// ItemIDs trả về danh sách id cần theo dõi tiến độ, theo thứ tự nội dung.
func (l *Lesson) ItemIDs() ([]string, ItemKind) {
	content := l.Content.Data()
	switch l.Type {
	case LessonTranslation:
		ids := make([]string, 0, len(content.Questions))
		for _, q := range content.Questions {
			ids = append(ids, q.ID)
		}
		return ids, ItemQuestion
	case LessonReading:
		ids := make([]string, 0, len(content.Articles))
		for _, a := range content.Articles {
			ids = append(ids, a.ID)
		}
		return ids, ItemArticle
	}
	return nil, ""
}

func (c LessonContent) FindQuestion(id string) (TranslationItem, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return TranslationItem{}, false
}

func (c LessonContent) FindArticle(id string) (Article, bool) {
	for _, a := range c.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}

func (c LessonContent) FindWord(word string) (VocabWord, bool) {
	for _, w := range c.Words {
		if w.Word == word {
			return w, true
		}
	}
	return VocabWord{}, false
}

// Validate kiểm tra id ổn định và duy nhất trong phạm vi một bài học.
func (c LessonContent) Validate(t LessonType) error {
	seen := map[string]bool{}
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%w: %s without id", ErrValidation, kind)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrValidation, id)
		}
		seen[id] = true
		return nil
	}
	checkQuestions := func(qs []Question) error {
		for _, q := range qs {
			if err := claim("question", q.ID); err != nil {
				return err
			}
			switch q.QType {
			case QuestionSingleChoice, QuestionMultiChoice:
				for _, o := range q.Options {
					if err := claim("option", o.ID); err != nil {
						return err
					}
				}
			case QuestionFillInBlank:
			default:
				return fmt.Errorf("%w: question %q has unknown qType %q", ErrValidation, q.ID, q.QType)
			}
		}
		return nil
	}

	switch t {
	case LessonVocab:
		for _, w := range c.Words {
			if err := claim("word", w.Word); err != nil {
				return err
			}
		}
	case LessonTranslation:
		for _, q := range c.Questions {
			if err := claim("translation item", q.ID); err != nil {
				return err
			}
		}
	case LessonReading:
		for _, a := range c.Articles {
			if err := claim("article", a.ID); err != nil {
				return err
			}
			if err := checkQuestions(a.Questions); err != nil {
				return err
			}
		}
	case LessonGrammar:
		var walk func(nodes []TheoryNode) error
		walk = func(nodes []TheoryNode) error {
			for _, n := range nodes {
				if err := claim("theory node", n.ID); err != nil {
					return err
				}
				if err := walk(n.Children); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(c.GrammarTheory); err != nil {
			return err
		}
		return checkQuestions(c.GrammarQuestions)
	case LessonIdiom:
		titles := map[string]bool{}
		for _, cat := range c.Categories {
			if cat.CategoryTitle == "" || titles[cat.CategoryTitle] {
				return fmt.Errorf("%w: idiom category title must be unique and non-empty", ErrValidation)
			}
			titles[cat.CategoryTitle] = true
			for _, i := range cat.Idioms {
				if err := claim("idiom", i.ID); err != nil {
					return err
				}
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLessonType, t)
	}
	return nil
}

// LessonSummary là bản rút gọn dùng cho danh sách bài học
type LessonSummary struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Language    Language       `json:"language"`
	Type        LessonType     `json:"type"`
	Level       string         `json:"level"`
	Order       int            `json:"order"`
	Version     int            `json:"version"`
	IsActive    bool           `json:"isActive"`
	Content     *LessonContent `json:"content,omitempty"`
}

func (l Lesson) Summary(withContent bool) LessonSummary {
	s := LessonSummary{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Language:    l.Language,
		Type:        l.Type,
		Level:       l.Level,
		Order:       l.Order,
		Version:     l.Version,
		IsActive:    l.IsActive,
	}
	if withContent {
		content := l.Content.Data()
		s.Content = &content
	}
	return s
}
