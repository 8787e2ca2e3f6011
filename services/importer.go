package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/vnkhanh/engchi-backend/models"
)

// LessonFile là định dạng một bài học trong file seed JSON
type LessonFile struct {
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Description string               `json:"description"`
	Language    models.Language      `json:"language"`
	Type        models.LessonType    `json:"type"`
	Level       string               `json:"level"`
	Order       int                  `json:"order"`
	IsActive    *bool                `json:"isActive"`
	Content     models.LessonContent `json:"content"`
}

type ImportReport struct {
	Files   int      `json:"files"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

func (r *ImportReport) add(created bool) {
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

type LessonImporter struct {
	lessons LessonRepository
	log     *logrus.Logger
}

func NewLessonImporter(lessons LessonRepository, log *logrus.Logger) *LessonImporter {
	return &LessonImporter{lessons: lessons, log: log}
}

// Import kiểm tra rồi upsert một bài học theo khoá (type, language, slug).
func (i *LessonImporter) Import(ctx context.Context, f LessonFile) (bool, error) {
	if strings.TrimSpace(f.Title) == "" {
		return false, fmt.Errorf("%w: lesson title is required", models.ErrValidation)
	}
	if !f.Language.Valid() {
		return false, fmt.Errorf("%w: unknown language %q", models.ErrValidation, f.Language)
	}
	if !f.Type.Valid() {
		return false, fmt.Errorf("%w: %q", models.ErrInvalidLessonType, f.Type)
	}
	if err := f.Content.Validate(f.Type); err != nil {
		return false, fmt.Errorf("lesson %q: %w", f.Title, err)
	}

	key := f.Slug
	if key == "" {
		key = slug.Make(f.Title)
	}
	lesson := &models.Lesson{
		Title:       strings.TrimSpace(f.Title),
		Slug:        key,
		Description: f.Description,
		Language:    f.Language,
		Type:        f.Type,
		Level:       f.Level,
		Order:       f.Order,
		IsActive:    f.IsActive == nil || *f.IsActive,
		Content:     datatypes.NewJSONType(f.Content),
	}
	return i.lessons.Upsert(ctx, lesson)
}

// ImportJSON nhận một bài học hoặc một mảng bài học.
func (i *LessonImporter) ImportJSON(ctx context.Context, r io.Reader) (*ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read lesson json: %w", err)
	}
	var files []LessonFile
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &files)
	} else {
		var one LessonFile
		err = json.Unmarshal(trimmed, &one)
		files = []LessonFile{one}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}

	report := &ImportReport{}
	for _, f := range files {
		created, err := i.Import(ctx, f)
		if err != nil {
			return report, err
		}
		report.add(created)
	}
	return report, nil
}

// ParseVocabSheet đọc sheet đầu tiên: cột A từ, B nghĩa, C phiên âm; dòng 1 là tiêu đề.
func ParseVocabSheet(r io.Reader) ([]models.VocabWord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	var words []models.VocabWord
	for idx, row := range rows {
		if idx == 0 || len(row) < 2 {
			continue
		}
		w := models.VocabWord{Word: strings.TrimSpace(row[0]), Meaning: strings.TrimSpace(row[1])}
		if len(row) > 2 {
			w.Pronounce = strings.TrimSpace(row[2])
		}
		if w.Word == "" || w.Meaning == "" {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// vocabSheetMeta đọc ngôn ngữ, cấp độ và tên bài từ tên file dạng <language>_<level>[_title].xlsx
func vocabSheetMeta(path string) (models.Language, string, string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("%w: vocab sheet name %q must be <language>_<level>[_title]", models.ErrValidation, base)
	}
	lang, level := models.Language(strings.ToLower(parts[0])), strings.ToUpper(parts[1])
	title := "Vocabulary " + level
	if len(parts) == 3 {
		title = strings.ReplaceAll(parts[2], "-", " ")
	}
	return lang, level, title, nil
}

func (i *LessonImporter) importSheet(ctx context.Context, path string) (bool, error) {
	lang, level, title, err := vocabSheetMeta(path)
	if err != nil {
		return false, err
	}
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	words, err := ParseVocabSheet(file)
	if err != nil {
		return false, err
	}
	return i.Import(ctx, LessonFile{
		Title:    title,
		Language: lang,
		Type:     models.LessonVocab,
		Level:    level,
		Content:  models.LessonContent{Words: words},
	})
}

// ImportDir duyệt thư mục, nhập mọi file .json và .xlsx. Lỗi từng file được ghi vào report.
func (i *LessonImporter) ImportDir(ctx context.Context, dir string) (*ImportReport, error) {
	report := &ImportReport{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			report.Files++
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			sub, err := i.ImportJSON(ctx, file)
			file.Close()
			if sub != nil {
				report.Created += sub.Created
				report.Updated += sub.Updated
			}
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
			}
		case ".xlsx":
			report.Files++
			created, err := i.importSheet(ctx, path)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
				return nil
			}
			report.add(created)
		default:
			return nil
		}
		i.log.WithField("file", path).Debug("đã xử lý file seed")
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", dir, err)
	}
	return report, nil
}
