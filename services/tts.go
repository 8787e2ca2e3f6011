package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/vnkhanh/engchi-backend/models"
)

const maxPronounceBytes = 500

type voice struct {
	languageCode string
	name         string
}

var voices = map[models.Language]voice{
	models.LanguageEnglish: {languageCode: "en-US", name: "en-US-Standard-C"},
	models.LanguageChinese: {languageCode: "cmn-CN", name: "cmn-CN-Standard-A"},
}

var ErrTTSNotConfigured = errors.New("GOOGLE_CREDENTIALS_JSON is not set")

// PronunciationService đọc từ/câu bằng Google Text-to-Speech.
type PronunciationService struct {
	credentialsFile string
}

func NewPronunciationService(credentialsFile string) *PronunciationService {
	return &PronunciationService{credentialsFile: credentialsFile}
}

// Synthesize trả về audio MP3 của đoạn text theo giọng của ngôn ngữ.
func (s *PronunciationService) Synthesize(ctx context.Context, text string, lang models.Language, rate float64) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxPronounceBytes {
		return nil, fmt.Errorf("%w: text must be 1-%d bytes", models.ErrValidation, maxPronounceBytes)
	}
	v, ok := voices[lang]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported language %q", models.ErrValidation, lang)
	}
	if rate <= 0 {
		rate = 1.0
	}
	if s.credentialsFile == "" {
		return nil, ErrTTSNotConfigured
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(s.credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("tts client: %w", err)
	}
	defer client.Close()

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: v.languageCode,
			Name:         v.name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}
