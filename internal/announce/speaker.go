package announce

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/adapters/tts"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

// AssetSaver persists audio bytes under a unique file name
type AssetSaver interface {
	Save(fileName string, audio []byte) error
}

// Speaker turns a script into an Announcement, synthesizing and saving
// audio when a synthesizer is configured. Synthesis failures degrade to
// a text-only announcement and are logged, never propagated.
type Speaker struct {
	synth  tts.Synthesizer
	store  AssetSaver
	namer  *Namer
	budget time.Duration
}

// NewSpeaker builds a speaker. synth may be nil, in which case every
// announcement is text-only.
func NewSpeaker(synth tts.Synthesizer, store AssetSaver, namer *Namer, budget time.Duration) *Speaker {
	return &Speaker{
		synth:  synth,
		store:  store,
		namer:  namer,
		budget: budget,
	}
}

// Speak produces an announcement for the script. The script is always
// present in the result; AudioHandle is nil whenever synthesis or saving
// fails.
func (s *Speaker) Speak(ctx context.Context, kind models.AnnouncementKind, script string) models.Announcement {
	ann := models.Announcement{Kind: kind, Script: script}
	if s.synth == nil {
		return ann
	}

	synthCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	audio, err := s.synth.Synthesize(synthCtx, script)
	if err != nil {
		logger.Warn("speech synthesis unavailable, falling back to text",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return ann
	}

	fileName := s.namer.FileName(kind)
	if err := s.store.Save(fileName, audio); err != nil {
		logger.Warn("failed to save audio asset, falling back to text",
			zap.String("file", fileName),
			zap.Error(err),
		)
		return ann
	}

	ann.AudioHandle = &models.AssetRef{FileName: fileName, CreatedAt: time.Now()}
	return ann
}
