package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// VoiceService downloads voice messages and transcribes them. Audio is
// streamed straight to the transcription API, never written to disk.
type VoiceService struct {
	client *openai.Client
	http   *http.Client
	log    *logrus.Entry
}

// Ensure VoiceService implements ITranscriber
var _ ITranscriber = (*VoiceService)(nil)

// NewVoiceService creates a new VoiceService instance
func NewVoiceService(apiKey, baseURL string) *VoiceService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &VoiceService{
		client: openai.NewClientWithConfig(cfg),
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logrus.WithField("component", "voice"),
	}
}

// Transcribe downloads the audio resource and runs it through Whisper.
// The output is plain text routed exactly like a typed message.
func (s *VoiceService) Transcribe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download voice message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("voice download failed with status %d", resp.StatusCode)
	}

	transcript, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   resp.Body,
		FilePath: "voice.ogg",
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	s.log.WithField("chars", len(transcript.Text)).Debug("voice message transcribed")
	return transcript.Text, nil
}
