package tts

import (
	"context"

	"github.com/tahcohcat/platepals-web/internal/logger"
)

type DummyTts struct {
}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) GenerateAudio(_ context.Context, _ string) ([]byte, error) {
	logger.New().Debug("no tts configured. ignoring TTS request")
	return nil, ErrDisabled
}

func (d *DummyTts) Name() string {
	return "dummy"
}
