// Package alsa records and plays audio through external command-line tools
// (arecord, aplay, mpg123 by default).
package alsa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrNoCommand signals an empty command line.
var ErrNoCommand = errors.New("audio command not configured")

// waitDelay bounds how long a killed command may hold its output pipes.
const waitDelay = time.Second

// run executes argv with stdin and returns stdout. Stderr is folded into the error.
func run(ctx context.Context, argv []string, stdin io.Reader) ([]byte, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrNoCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // commands come from operator config
	cmd.Stdin = stdin
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", argv[0], err)
		}
		return nil, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
	}
	return stdout.Bytes(), nil
}

// available reports whether argv's program can be found.
func available(argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return ErrNoCommand
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("look up %s: %w", argv[0], err)
	}
	return nil
}
