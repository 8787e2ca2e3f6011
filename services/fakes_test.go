package services

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vnkhanh/engchi-backend/models"
)

func testRand() *rand.Rand { return rand.New(rand.NewSource(42)) }

func newLesson(t models.LessonType, lang models.Language, content models.LessonContent) *models.Lesson {
	return &models.Lesson{
		ID:       uuid.New(),
		Title:    string(t) + " lesson",
		Slug:     uuid.NewString(),
		Language: lang,
		Type:     t,
		IsActive: true,
		Version:  1,
		Content:  datatypes.NewJSONType(content),
	}
}

type fakeLessonRepo struct {
	mu      sync.RWMutex
	lessons map[uuid.UUID]*models.Lesson
	order   []uuid.UUID
}

func newFakeLessonRepo(lessons ...*models.Lesson) *fakeLessonRepo {
	r := &fakeLessonRepo{lessons: make(map[uuid.UUID]*models.Lesson)}
	for _, l := range lessons {
		r.put(l)
	}
	return r
}

func (r *fakeLessonRepo) put(l *models.Lesson) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	copy := *l
	r.lessons[l.ID] = &copy
}

func (r *fakeLessonRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lessons[id]
	if !ok {
		return nil, models.ErrLessonNotFound
	}
	copy := *l
	return &copy, nil
}

func (r *fakeLessonRepo) List(ctx context.Context, q models.LessonQuery) ([]models.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Lesson
	for _, id := range r.order {
		l := r.lessons[id]
		if q.Type != "" && l.Type != q.Type || q.Language != "" && l.Language != q.Language {
			continue
		}
		if q.Level != "" && l.Level != q.Level || q.ActiveOnly && !l.IsActive {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLessonRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Lesson
	for _, id := range ids {
		if l, ok := r.lessons[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLessonRepo) ListByTypeLanguage(ctx context.Context, t models.LessonType, lang models.Language) ([]models.Lesson, error) {
	return r.List(ctx, models.LessonQuery{Type: t, Language: lang, ActiveOnly: true})
}

func (r *fakeLessonRepo) Upsert(ctx context.Context, lesson *models.Lesson) (bool, error) {
	r.mu.Lock()
	for _, l := range r.lessons {
		if l.Type == lesson.Type && l.Language == lesson.Language && l.Slug == lesson.Slug {
			lesson.ID = l.ID
			lesson.Version = l.Version + 1
			copy := *lesson
			r.lessons[l.ID] = &copy
			r.mu.Unlock()
			return false, nil
		}
	}
	r.mu.Unlock()
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	lesson.Version = 1
	r.put(lesson)
	return true, nil
}

// fakeProgressRepo mô phỏng các ràng buộc unique của bảng tiến độ
type fakeProgressRepo struct {
	mu      sync.Mutex
	lessons *fakeLessonRepo
	records map[uuid.UUID]*models.UserProgress
	seq     int

	// beforeCreate chạy trước khi lưu, dùng để giả lập request song song
	beforeCreate func(p *models.UserProgress)
}

func newFakeProgressRepo(lessons *fakeLessonRepo) *fakeProgressRepo {
	return &fakeProgressRepo{lessons: lessons, records: make(map[uuid.UUID]*models.UserProgress)}
}

func cloneProgress(p *models.UserProgress) *models.UserProgress {
	c := *p
	c.Items = append([]models.ProgressItem(nil), p.Items...)
	c.MasteredWords = append([]models.MasteredWord(nil), p.MasteredWords...)
	c.ReviewWords = append([]models.ReviewWord(nil), p.ReviewWords...)
	return &c
}

func (r *fakeProgressRepo) findLocked(userID, lessonID uuid.UUID) *models.UserProgress {
	for _, p := range r.records {
		if p.UserID == userID && p.LessonID == lessonID {
			return p
		}
	}
	return nil
}

func (r *fakeProgressRepo) FindByUserLesson(ctx context.Context, userID, lessonID uuid.UUID) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findLocked(userID, lessonID)
	if p == nil {
		return nil, models.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (r *fakeProgressRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok {
		return nil, models.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (r *fakeProgressRepo) Create(ctx context.Context, p *models.UserProgress) error {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook(p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findLocked(p.UserID, p.LessonID) != nil {
		return models.ErrProgressExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.seq++
	p.CreatedAt = time.Unix(int64(r.seq), 0)
	for i := range p.Items {
		p.Items[i].ProgressID = p.ID
	}
	r.records[p.ID] = cloneProgress(p)
	return nil
}

func (r *fakeProgressRepo) AppendItems(ctx context.Context, progressID uuid.UUID, items []models.ProgressItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressID]
	if !ok {
		return models.ErrProgressNotFound
	}
	for _, it := range items {
		exists := false
		for _, have := range p.Items {
			if have.ItemID == it.ItemID {
				exists = true
				break
			}
		}
		if !exists {
			it.ProgressID = progressID
			p.Items = append(p.Items, it)
		}
	}
	return nil
}

func (r *fakeProgressRepo) IncrementCounter(ctx context.Context, userID, lessonID uuid.UUID, kind models.ItemKind, itemID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findLocked(userID, lessonID)
	if p == nil {
		return false, nil
	}
	for i := range p.Items {
		if p.Items[i].ItemID == itemID && p.Items[i].Kind == kind {
			p.Items[i].Counter++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProgressRepo) addMasteredLocked(p *models.UserProgress, words []string) {
	for _, w := range words {
		if !p.MasteredSet()[w] {
			p.MasteredWords = append(p.MasteredWords, models.MasteredWord{ProgressID: p.ID, Word: w})
		}
	}
}

func (r *fakeProgressRepo) AddMasteredWords(ctx context.Context, progressID uuid.UUID, words []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressID]
	if !ok {
		return models.ErrProgressNotFound
	}
	r.addMasteredLocked(p, words)
	return nil
}

func (r *fakeProgressRepo) AddReviewWords(ctx context.Context, progressID uuid.UUID, entries []models.ReviewWord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressID]
	if !ok {
		return models.ErrProgressNotFound
	}
	for _, e := range entries {
		exists := false
		for _, have := range p.ReviewWords {
			if have.Word == e.Word {
				exists = true
				break
			}
		}
		if !exists {
			e.ProgressID = progressID
			p.ReviewWords = append(p.ReviewWords, e)
		}
	}
	return nil
}

func (r *fakeProgressRepo) UnqueueAndMaster(ctx context.Context, progressID uuid.UUID, words []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressID]
	if !ok {
		return models.ErrProgressNotFound
	}
	remove := map[string]bool{}
	for _, w := range words {
		remove[w] = true
	}
	kept := p.ReviewWords[:0]
	for _, e := range p.ReviewWords {
		if !remove[e.Word] {
			kept = append(kept, e)
		}
	}
	p.ReviewWords = kept
	r.addMasteredLocked(p, words)
	return nil
}

func (r *fakeProgressRepo) reviewLocked(userID uuid.UUID, lang models.Language) []models.ReviewWord {
	var records []*models.UserProgress
	for _, p := range r.records {
		if p.UserID != userID {
			continue
		}
		l, err := r.lessons.FindByID(context.Background(), p.LessonID)
		if err != nil || l.Language != lang {
			continue
		}
		records = append(records, p)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	var out []models.ReviewWord
	for _, p := range records {
		out = append(out, p.ReviewWords...)
	}
	return out
}

func (r *fakeProgressRepo) ListReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) ([]models.ReviewWord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviewLocked(userID, lang), nil
}

func (r *fakeProgressRepo) CountReviewWords(ctx context.Context, userID uuid.UUID, lang models.Language) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.reviewLocked(userID, lang))), nil
}

func (r *fakeProgressRepo) counter(userID, lessonID uuid.UUID, itemID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findLocked(userID, lessonID)
	if p == nil {
		return -1
	}
	for _, it := range p.Items {
		if it.ItemID == itemID {
			return it.Counter
		}
	}
	return -1
}

type fakeGrader struct {
	grade       *TranslationGrade
	gradeErr    error
	verdicts    []bool
	vocabErr    error
	tasks       []TranslationTask
	vocabCalls  [][]WordPair
	receivedKey string
}

func (g *fakeGrader) GradeTranslation(ctx context.Context, apiKey string, task TranslationTask) (*TranslationGrade, error) {
	g.receivedKey = apiKey
	g.tasks = append(g.tasks, task)
	if g.gradeErr != nil {
		return nil, g.gradeErr
	}
	return g.grade, nil
}

func (g *fakeGrader) CheckVocab(ctx context.Context, apiKey string, lang models.Language, pairs []WordPair) ([]bool, error) {
	g.receivedKey = apiKey
	g.vocabCalls = append(g.vocabCalls, pairs)
	if g.vocabErr != nil {
		return nil, g.vocabErr
	}
	return g.verdicts, nil
}

// countingKey đếm số lần accessor API key được gọi
type countingKey struct {
	key   string
	err   error
	calls int
}

func (k *countingKey) source() APIKeySource {
	return func() (string, error) {
		k.calls++
		return k.key, k.err
	}
}

var errUpstream = errors.New("upstream unavailable")
