package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/engchi-backend/models"
)

type ProgressAction string

const (
	ActionMarkMastered     ProgressAction = "delete_words"
	ActionQueueReview      ProgressAction = "review_words"
	ActionUnqueueAndMaster ProgressAction = "remove_review_words"
)

func ParseProgressAction(s string) (ProgressAction, error) {
	switch a := ProgressAction(s); a {
	case ActionMarkMastered, ActionQueueReview, ActionUnqueueAndMaster:
		return a, nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrInvalidAction, s)
}

type wordsPayload struct {
	Words []string `json:"words"`
}

type reviewEntry struct {
	Word           string    `json:"word"`
	MasterLessonID uuid.UUID `json:"masterLessonId"`
}

type reviewPayload struct {
	Words []reviewEntry `json:"words"`
}

type ReviewItem struct {
	WordData       models.VocabWord `json:"wordData"`
	MasterLessonID uuid.UUID        `json:"masterLessonId"`
}

type ReviewService struct {
	lessons  LessonRepository
	progress ProgressRepository
	log      *logrus.Logger
}

func NewReviewService(lessons LessonRepository, progress ProgressRepository, log *logrus.Logger) *ReviewService {
	return &ReviewService{lessons: lessons, progress: progress, log: log}
}

func cleanWords(words []string) []string {
	trimmed := lo.Map(words, func(w string, _ int) string { return strings.TrimSpace(w) })
	return lo.Uniq(lo.Compact(trimmed))
}

// Apply thực hiện một thao tác trên tập từ của bản ghi tiến độ. Chỉ chủ sở hữu được phép.
func (s *ReviewService) Apply(ctx context.Context, userID, progressID uuid.UUID, action ProgressAction, payload json.RawMessage) (*models.UserProgress, error) {
	progress, err := s.progress.FindByID(ctx, progressID)
	if err != nil {
		return nil, err
	}
	if progress.UserID != userID {
		return nil, models.ErrNotAuthorized
	}

	switch action {
	case ActionMarkMastered:
		var p wordsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
		}
		err = s.progress.AddMasteredWords(ctx, progress.ID, cleanWords(p.Words))

	case ActionQueueReview:
		var p reviewPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
		}
		entries := make([]models.ReviewWord, 0, len(p.Words))
		for _, e := range lo.UniqBy(p.Words, func(e reviewEntry) string { return strings.TrimSpace(e.Word) }) {
			word := strings.TrimSpace(e.Word)
			if word == "" {
				continue
			}
			lessonID := e.MasterLessonID
			if lessonID == uuid.Nil {
				lessonID = progress.LessonID
			}
			entries = append(entries, models.ReviewWord{Word: word, LessonID: lessonID})
		}
		err = s.progress.AddReviewWords(ctx, progress.ID, entries)

	case ActionUnqueueAndMaster:
		var p wordsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
		}
		err = s.progress.UnqueueAndMaster(ctx, progress.ID, cleanWords(p.Words))

	default:
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidAction, action)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"progress": progress.ID, "action": action}).Debug("cập nhật tập từ")
	return s.progress.FindByID(ctx, progress.ID)
}

// ReviewWords gom từ cần ôn của user theo ngôn ngữ, mỗi từ lấy lần xuất hiện đầu tiên.
func (s *ReviewService) ReviewWords(ctx context.Context, userID uuid.UUID, language string) ([]ReviewItem, error) {
	lang := models.Language(language)
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: language query parameter is required", models.ErrValidation)
	}
	entries, err := s.progress.ListReviewWords(ctx, userID, lang)
	if err != nil {
		return nil, err
	}
	entries = lo.UniqBy(entries, func(e models.ReviewWord) string { return e.Word })
	if len(entries) == 0 {
		return []ReviewItem{}, nil
	}

	lessonIDs := lo.Uniq(lo.Map(entries, func(e models.ReviewWord, _ int) uuid.UUID { return e.LessonID }))
	lessons, err := s.lessons.ListByIDs(ctx, lessonIDs)
	if err != nil {
		return nil, err
	}
	contentByID := make(map[uuid.UUID]models.LessonContent, len(lessons))
	for _, l := range lessons {
		contentByID[l.ID] = l.Content.Data()
	}

	items := make([]ReviewItem, 0, len(entries))
	for _, e := range entries {
		word, ok := contentByID[e.LessonID].FindWord(e.Word)
		if !ok {
			continue
		}
		items = append(items, ReviewItem{WordData: word, MasterLessonID: e.LessonID})
	}
	return items, nil
}

func (s *ReviewService) ReviewCount(ctx context.Context, userID uuid.UUID, language string) (int64, error) {
	lang := models.Language(language)
	if !lang.Valid() {
		return 0, fmt.Errorf("%w: language query parameter is required", models.ErrValidation)
	}
	return s.progress.CountReviewWords(ctx, userID, lang)
}
