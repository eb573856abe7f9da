package cups

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// SpoolSink writes each job as a text file into a directory, for kiosks
// without a printer or for an external print daemon to pick up.
type SpoolSink struct {
	fs     afero.Fs
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

// NewSpoolSink creates a SpoolSink. fs is usually afero.NewOsFs().
func NewSpoolSink(fsys afero.Fs, dir string, logger *zap.Logger) *SpoolSink {
	return &SpoolSink{fs: fsys, dir: filepath.Clean(dir), now: time.Now, logger: logger}
}

// Submit implements domain.PrintSink.
func (s *SpoolSink) Submit(ctx context.Context, job domain.PrintJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return domain.NewPrintError("spool", fmt.Errorf("create spool dir: %w", err))
	}

	name := fmt.Sprintf("%s-%s.txt", s.now().UTC().Format("20060102T150405.000000000"), safeName(job.Title))
	path := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, path, []byte(Render(job)+"\n"), 0o644); err != nil {
		return domain.NewPrintError("spool", fmt.Errorf("write %s: %w", path, err))
	}

	s.logger.Info("Print job spooled", zap.String("path", path), zap.String("kind", string(job.Kind)))
	return nil
}

// HealthCheck verifies the spool directory exists or can be created.
func (s *SpoolSink) HealthCheck(_ context.Context) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("spool dir %s: %w", s.dir, err)
	}
	return nil
}

// safeName keeps letters, digits, dash and underscore.
func safeName(title string) string {
	if title == "" {
		return "job"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, title)
}
