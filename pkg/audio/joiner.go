package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/harunnryd/newsroom/pkg/errorsx"
)

// Joiner concatenates ordered encoded audio buffers into one track.
// Buffers arrive already sorted by turn index; the joiner must not gap,
// reorder, or re-encode beyond what lossless concatenation requires.
type Joiner interface {
	Join(ctx context.Context, buffers [][]byte) ([]byte, error)
}

// FFmpegJoiner shells out to ffmpeg's concat demuxer with stream copy, so
// segments are joined without transcoding. Segments are staged in a temp
// directory for the duration of the call.
type FFmpegJoiner struct {
	// Binary overrides the ffmpeg executable path ("ffmpeg" by default).
	Binary string
	// Ext is the container extension of the buffers ("mp3" by default).
	Ext string
}

func (j FFmpegJoiner) Join(ctx context.Context, buffers [][]byte) ([]byte, error) {
	if len(buffers) == 0 {
		return nil, errorsx.Wrap(fmt.Errorf("no audio segments to join"), errorsx.ReasonJoinFailed)
	}
	binary := j.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	ext := strings.TrimPrefix(j.Ext, ".")
	if ext == "" {
		ext = "mp3"
	}

	dir, err := os.MkdirTemp("", "newsroom-join-")
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonJoinFailed)
	}
	defer os.RemoveAll(dir)

	listLines := make([]string, 0, len(buffers))
	for i, buf := range buffers {
		name := filepath.Join(dir, fmt.Sprintf("%03d.%s", i, ext))
		if err := os.WriteFile(name, buf, 0o644); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonJoinFailed)
		}
		listLines = append(listLines, fmt.Sprintf("file '%s'", name))
	}
	listPath := filepath.Join(dir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(strings.Join(listLines, "\n")), 0o644); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonJoinFailed)
	}

	outPath := filepath.Join(dir, "final."+ext)
	cmd := exec.CommandContext(ctx, binary,
		"-y", "-f", "concat", "-safe", "0",
		"-i", listPath, "-c", "copy", outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errorsx.Wrap(
			fmt.Errorf("ffmpeg concat: %w: %s", err, tail(string(out), 512)),
			errorsx.ReasonJoinFailed,
		)
	}

	joined, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonJoinFailed)
	}
	return joined, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Joiner = FFmpegJoiner{}
