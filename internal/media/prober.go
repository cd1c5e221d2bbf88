// Package media probes local video files for playback metadata. The agent
// only needs the duration; everything else about the file stays opaque.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reports the duration of a video file in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// probeOutput is the slice of ffprobe's JSON output the agent cares about.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FFProber shells out to ffprobe and requires ffmpeg to be installed on the
// host.
type FFProber struct {
	logger *slog.Logger
}

func NewFFProber(logger *slog.Logger) *FFProber {
	return &FFProber{logger: logger}
}

func (p *FFProber) Probe(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("cannot probe video: %w", err)
	}

	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := ParseDuration([]byte(out))
	if err != nil {
		return 0, err
	}

	if p.logger != nil {
		p.logger.Info("probed video", "path", path, "duration_s", seconds)
	}
	return seconds, nil
}

// ParseDuration extracts format.duration from ffprobe JSON output.
func ParseDuration(out []byte) (float64, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe output: %w", err)
	}
	if parsed.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}
	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", parsed.Format.Duration, err)
	}
	return seconds, nil
}

// StubProber stands in when probing is disabled. It reports no duration,
// leaving the session with whatever the client supplied.
type StubProber struct {
	logger *slog.Logger
}

func NewStubProber(logger *slog.Logger) *StubProber {
	return &StubProber{logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, path string) (float64, error) {
	if p.logger != nil {
		p.logger.Info("probe disabled, skipping", "path", path)
	}
	return 0, nil
}

// IsLocalPath reports whether a video reference points at a file on this
// machine rather than a URL. Remote videos play directly in the browser;
// only local files are probed and streamed by the agent.
func IsLocalPath(ref string) bool {
	if ref == "" {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "blob:", "data:"} {
		if strings.HasPrefix(ref, scheme) {
			return false
		}
	}
	return true
}
