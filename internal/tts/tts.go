package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/logger"
)

// ErrDisabled is returned when no speech backend is configured.
var ErrDisabled = errors.New("text to speech is disabled")

// maxInputBytes stays under the synthesis API request limit.
const maxInputBytes = 4800

type Tts interface {
	// GenerateAudio returns MP3 audio of text.
	GenerateAudio(ctx context.Context, text string) ([]byte, error)
	Name() string
}

// New returns the configured backend, or the dummy one when speech is off.
func New(ctx context.Context, cfg config.TtsConfig) (Tts, error) {
	if !cfg.Enabled {
		return NewDummyTts(), nil
	}

	switch cfg.Type {
	case "google", "":
		g, err := NewGoogleTTS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		logger.New().Warn(fmt.Sprintf("unknown tts type %s, speech disabled", cfg.Type))
		return NewDummyTts(), nil
	}
}

// cleanText strips markdown decoration that would be read out loud and
// trims the text to what one request can carry.
func cleanText(text string) string {
	replacer := strings.NewReplacer("*", "", "#", "", "[", "", "]", "", "`", "", "_", " ")
	text = strings.TrimSpace(replacer.Replace(text))

	if len(text) <= maxInputBytes {
		return text
	}
	cut := maxInputBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// languageCode extracts "en-GB" from a voice name like "en-GB-Standard-D".
func languageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	return "en-US"
}
