package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// FFProbe reads media durations using the ffprobe CLI tool.
type FFProbe struct {
	Binary  string
	Run     CommandRunner
	Timeout time.Duration
}

// NewFFProbe constructs a prober that shells out to ffprobe.
func NewFFProbe(binary string, timeout time.Duration) *FFProbe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{Binary: binary, Run: defaultCommandRunner, Timeout: timeout}
}

// Duration returns the container duration of the file at path in seconds.
func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	run := p.Run
	if run == nil {
		run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	out, err := run(execCtx, p.Binary, "-v", "error", "-show_entries", "format=duration", "-of", "json", path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe response: %w", err)
	}
	if payload.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe returned no duration for %s", path)
	}

	duration, err := strconv.ParseFloat(payload.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", payload.Format.Duration, err)
	}
	return duration, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
