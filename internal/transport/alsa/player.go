package alsa

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Format is an encoded audio format.
type Format string

// Supported formats.
const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Player plays encoded audio by piping it to an external command.
type Player struct {
	commands map[Format][]string
	logger   *zap.Logger
}

// NewPlayer creates a Player. Both commands read the audio from stdin.
func NewPlayer(wavCommand, mp3Command []string, logger *zap.Logger) *Player {
	return &Player{
		commands: map[Format][]string{
			FormatWAV: append([]string(nil), wavCommand...),
			FormatMP3: append([]string(nil), mp3Command...),
		},
		logger: logger,
	}
}

// Play blocks until the audio has been played.
func (p *Player) Play(ctx context.Context, audio []byte, format Format) error {
	argv, ok := p.commands[format]
	if !ok {
		return fmt.Errorf("unsupported audio format %q", format)
	}
	if _, err := run(ctx, argv, bytes.NewReader(audio)); err != nil {
		return fmt.Errorf("play %s: %w", format, err)
	}
	p.logger.Debug("Played audio", zap.String("format", string(format)), zap.Int("bytes", len(audio)))
	return nil
}

// HealthCheck verifies the WAV player program is installed.
func (p *Player) HealthCheck(_ context.Context) error {
	return available(p.commands[FormatWAV])
}
