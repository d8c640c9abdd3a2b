package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/services"
	"github.com/tahcohcat/platepals-web/internal/tts"
)

const speechTimeout = 30 * time.Second

// SpeechHandler reads stored recipes out loud.
type SpeechHandler struct {
	kitchen *services.KitchenService
	speaker tts.Tts
}

func NewSpeechHandler(kitchen *services.KitchenService, speaker tts.Tts) *SpeechHandler {
	return &SpeechHandler{kitchen: kitchen, speaker: speaker}
}

// GET /api/v1/recipes/{index}/speak - Stream the recipe as MP3
func (sh *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad recipe index", services.ErrInvalidInput))
		return
	}

	rec, err := sh.kitchen.Recipe(currentUser(r), index)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), speechTimeout)
	defer cancel()

	audio, err := sh.speaker.GenerateAudio(ctx, rec.Name+".\n"+rec.Details)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(audio); err != nil {
		logger.New().WithError(err).Warn("failed to stream recipe audio")
	}
}
