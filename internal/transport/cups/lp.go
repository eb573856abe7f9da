package cups

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

var requestIDRe = regexp.MustCompile(`request id is (\S+)`)

// LPConfig holds the CUPS client settings.
type LPConfig struct {
	Printer       string // destination; empty means the CUPS default
	LPCommand     string // default "lp"
	LPStatCommand string // default "lpstat"
	Timeout       time.Duration
	Logger        *zap.Logger
}

// LPSink submits jobs with the CUPS lp client, feeding the text on stdin.
type LPSink struct {
	printer string
	lp      string
	lpstat  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewLPSink creates an LPSink.
func NewLPSink(cfg *LPConfig) *LPSink {
	s := &LPSink{
		printer: cfg.Printer,
		lp:      cfg.LPCommand,
		lpstat:  cfg.LPStatCommand,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if s.lp == "" {
		s.lp = "lp"
	}
	if s.lpstat == "" {
		s.lpstat = "lpstat"
	}
	return s
}

// Submit implements domain.PrintSink.
func (s *LPSink) Submit(ctx context.Context, job domain.PrintJob) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := make([]string, 0, 4)
	if s.printer != "" {
		args = append(args, "-d", s.printer)
	}
	if job.Title != "" {
		args = append(args, "-t", job.Title)
	}

	out, err := s.run(ctx, s.lp, args, Render(job))
	if err != nil {
		return domain.NewPrintError(s.printer, err)
	}

	fields := []zap.Field{zap.String("printer", s.printer), zap.String("title", job.Title)}
	if m := requestIDRe.FindStringSubmatch(out); m != nil {
		fields = append(fields, zap.String("job_id", m[1]))
	}
	s.logger.Info("Print job submitted", fields...)
	return nil
}

// HealthCheck verifies that the destination (or a default destination) exists.
func (s *LPSink) HealthCheck(ctx context.Context) error {
	args := []string{"-d"}
	if s.printer != "" {
		args = []string{"-p", s.printer}
	}
	out, err := s.run(ctx, s.lpstat, args, "")
	if err != nil {
		return err
	}
	if s.printer == "" && strings.Contains(out, "no system default") {
		return domain.ErrNoPrinter
	}
	return nil
}

func (s *LPSink) run(ctx context.Context, name string, args []string, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // command comes from operator config
	cmd.Stdin = strings.NewReader(stdin)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	s.logger.Debug("CUPS command finished",
		zap.String("command", name),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "No default destination") || strings.Contains(msg, "does not exist") {
			return "", fmt.Errorf("%s: %s: %w", name, msg, domain.ErrNoPrinter)
		}
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}
