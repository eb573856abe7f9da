package alsa

import (
	"context"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Recorder captures microphone audio as WAV.
// The configured command must write WAV to stdout; the duration is passed as "-d <seconds>".
type Recorder struct {
	command []string
	logger  *zap.Logger
}

// NewRecorder creates a Recorder for the given command line.
func NewRecorder(command []string, logger *zap.Logger) *Recorder {
	return &Recorder{command: append([]string(nil), command...), logger: logger}
}

// Record captures d of audio, rounded up to whole seconds.
func (r *Recorder) Record(ctx context.Context, d time.Duration) ([]byte, error) {
	if len(r.command) == 0 || r.command[0] == "" {
		return nil, ErrNoCommand
	}
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	argv := append(append([]string(nil), r.command...), "-d", strconv.Itoa(secs))

	r.logger.Debug("Recording", zap.Strings("argv", argv))
	return run(ctx, argv, nil)
}

// HealthCheck verifies the recorder program is installed.
func (r *Recorder) HealthCheck(_ context.Context) error {
	return available(r.command)
}
