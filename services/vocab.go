package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

const defaultPracticeLimit = 50

type VocabVerdict struct {
	IsCorrect bool `json:"isCorrect"`
}

type VocabService struct {
	lessons  LessonRepository
	progress ProgressRepository
	grader   Grader
	log      *logrus.Logger
}

func NewVocabService(lessons LessonRepository, progress ProgressRepository, grader Grader, log *logrus.Logger) *VocabService {
	return &VocabService{lessons: lessons, progress: progress, grader: grader, log: log}
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// meanings gom nghĩa của các từ cần kiểm tra từ mọi bài từ vựng cùng ngôn ngữ.
func (s *VocabService) meanings(ctx context.Context, lang models.Language, pairs []WordPair) (map[string][]string, error) {
	wanted := lo.SliceToMap(pairs, func(p WordPair) (string, bool) { return normalizeWord(p.SourceWord), true })
	lessons, err := s.lessons.ListByTypeLanguage(ctx, models.LessonVocab, lang)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, l := range lessons {
		for _, w := range l.Content.Data().Words {
			key := normalizeWord(w.Word)
			if wanted[key] {
				out[key] = append(out[key], w.Meaning)
			}
		}
	}
	return out, nil
}

// Check chấm nghĩa từ vựng: khớp nghĩa trong bài thì đúng ngay,
// các từ còn lại gửi AI trong một lần gọi duy nhất.
func (s *VocabService) Check(ctx context.Context, lang models.Language, pairs []WordPair, apiKey APIKeySource) ([]VocabVerdict, error) {
	if len(pairs) == 0 || !lang.Valid() {
		return nil, fmt.Errorf("%w: invalid payload for vocab check", models.ErrInvalidPayload)
	}
	known, err := s.meanings(ctx, lang, pairs)
	if err != nil {
		return nil, err
	}

	results := make([]VocabVerdict, len(pairs))
	var pending []int
	for i, p := range pairs {
		input := strings.TrimSpace(p.UserInput)
		matched := input != "" && lo.ContainsBy(known[normalizeWord(p.SourceWord)], func(m string) bool {
			return strings.EqualFold(strings.TrimSpace(m), input)
		})
		if matched {
			results[i].IsCorrect = true
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return results, nil
	}

	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	batch := lo.Map(pending, func(i int, _ int) WordPair { return pairs[i] })
	verdicts, err := s.grader.CheckVocab(ctx, key, lang, batch)
	if err != nil {
		return nil, fmt.Errorf("check vocab: %w", err)
	}
	for j, i := range pending {
		if j < len(verdicts) {
			results[i].IsCorrect = verdicts[j]
		}
	}
	s.log.WithFields(logrus.Fields{"local": len(pairs) - len(pending), "remote": len(pending)}).Debug("vocab check")
	return results, nil
}

// PracticeWords trả về các từ chưa thuộc của bài, xáo trộn và giới hạn số lượng.
func (s *VocabService) PracticeWords(ctx context.Context, userID, lessonID uuid.UUID, limit int, rng *rand.Rand) ([]models.VocabWord, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != models.LessonVocab {
		return nil, fmt.Errorf("%w: vocab lesson %s", models.ErrLessonNotFound, lessonID)
	}
	progress, err := s.progress.FindByUserLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	mastered := progress.MasteredSet()
	words := lo.Filter(lesson.Content.Data().Words, func(w models.VocabWord, _ int) bool {
		return !mastered[w.Word]
	})
	rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	if limit <= 0 {
		limit = defaultPracticeLimit
	}
	if len(words) > limit {
		words = words[:limit]
	}
	return words, nil
}
