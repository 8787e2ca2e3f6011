package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/engchi-backend/models"
)

func vocabFixture() (*fakeLessonRepo, *fakeProgressRepo, *models.Lesson) {
	en := newLesson(models.LessonVocab, models.LanguageEnglish, models.LessonContent{Words: []models.VocabWord{
		{Word: "apple", Meaning: "quả táo"},
		{Word: "run", Meaning: "chạy"},
		{Word: "book", Meaning: "quyển sách"},
	}})
	other := newLesson(models.LessonVocab, models.LanguageEnglish, models.LessonContent{Words: []models.VocabWord{
		{Word: "book", Meaning: "đặt chỗ"},
	}})
	zh := newLesson(models.LessonVocab, models.LanguageChinese, models.LessonContent{Words: []models.VocabWord{
		{Word: "apple", Meaning: "sai ngôn ngữ"},
	}})
	lessons := newFakeLessonRepo(en, other, zh)
	return lessons, newFakeProgressRepo(lessons), en
}

func TestVocabCheckLocalMatchSkipsGrader(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	grader := &fakeGrader{}
	key := &countingKey{key: "k"}
	svc := NewVocabService(lessons, progress, grader, quietLogger())

	got, err := svc.Check(context.Background(), models.LanguageEnglish, []WordPair{
		{SourceWord: "Apple", UserInput: " Quả Táo "},
		{SourceWord: "book", UserInput: "đặt chỗ"},
	}, key.source())
	require.NoError(t, err)
	assert.Equal(t, []VocabVerdict{{IsCorrect: true}, {IsCorrect: true}}, got)
	assert.Empty(t, grader.vocabCalls)
	assert.Zero(t, key.calls)
}

func TestVocabCheckBatchesUnknownPairs(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	grader := &fakeGrader{verdicts: []bool{true, false}}
	key := &countingKey{key: "k"}
	svc := NewVocabService(lessons, progress, grader, quietLogger())

	got, err := svc.Check(context.Background(), models.LanguageEnglish, []WordPair{
		{SourceWord: "run", UserInput: "chạy"},
		{SourceWord: "run", UserInput: "vận hành"},
		{SourceWord: "apple", UserInput: "sai ngôn ngữ"},
	}, key.source())
	require.NoError(t, err)
	assert.Equal(t, []VocabVerdict{{IsCorrect: true}, {IsCorrect: true}, {IsCorrect: false}}, got)
	require.Len(t, grader.vocabCalls, 1)
	assert.Equal(t, []WordPair{
		{SourceWord: "run", UserInput: "vận hành"},
		{SourceWord: "apple", UserInput: "sai ngôn ngữ"},
	}, grader.vocabCalls[0])
	assert.Equal(t, 1, key.calls)
}

func TestVocabCheckShortVerdictsDefaultFalse(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	grader := &fakeGrader{verdicts: []bool{true}}
	svc := NewVocabService(lessons, progress, grader, quietLogger())

	got, err := svc.Check(context.Background(), models.LanguageEnglish, []WordPair{
		{SourceWord: "x", UserInput: "a"},
		{SourceWord: "y", UserInput: "b"},
	}, (&countingKey{key: "k"}).source())
	require.NoError(t, err)
	assert.Equal(t, []VocabVerdict{{IsCorrect: true}, {IsCorrect: false}}, got)
}

func TestVocabCheckInvalidPayload(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	svc := NewVocabService(lessons, progress, &fakeGrader{}, quietLogger())

	_, err := svc.Check(context.Background(), models.LanguageEnglish, nil, (&countingKey{}).source())
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
	_, err = svc.Check(context.Background(), "fr", []WordPair{{SourceWord: "a"}}, (&countingKey{}).source())
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
}

func TestVocabCheckGraderError(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	svc := NewVocabService(lessons, progress, &fakeGrader{vocabErr: errUpstream}, quietLogger())

	_, err := svc.Check(context.Background(), models.LanguageEnglish, []WordPair{{SourceWord: "x", UserInput: "y"}}, (&countingKey{key: "k"}).source())
	assert.ErrorIs(t, err, errUpstream)
}

func TestPracticeWordsExcludesMastered(t *testing.T) {
	ctx := context.Background()
	lessons, progress, lesson := vocabFixture()
	user := uuid.New()
	res, err := NewSessionService(lessons, progress, quietLogger()).StartLesson(ctx, user, lesson.ID)
	require.NoError(t, err)
	require.NoError(t, progress.AddMasteredWords(ctx, res.Progress.ID, []string{"run"}))

	svc := NewVocabService(lessons, progress, &fakeGrader{}, quietLogger())
	words, err := svc.PracticeWords(ctx, user, lesson.ID, 0, testRand())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apple", "book"}, []string{words[0].Word, words[1].Word})
	assert.Len(t, words, 2)

	limited, err := svc.PracticeWords(ctx, user, lesson.ID, 1, testRand())
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAICheckRun(t *testing.T) {
	lessons, progress, _ := vocabFixture()
	svc := NewAICheckService(NewVocabService(lessons, progress, &fakeGrader{}, quietLogger()))
	payload := json.RawMessage(`{"sourceLanguage":"en","wordPairs":[{"sourceWord":"apple","userInput":"quả táo"}]}`)

	out, err := svc.Run(context.Background(), CheckVocab, payload, (&countingKey{}).source())
	require.NoError(t, err)
	assert.Equal(t, []VocabVerdict{{IsCorrect: true}}, out)

	_, err = svc.Run(context.Background(), CheckVocab, json.RawMessage(`[1,2]`), (&countingKey{}).source())
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	_, err = ParseCheckType("translation")
	assert.ErrorIs(t, err, models.ErrInvalidCheckType)
}
