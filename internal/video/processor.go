package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Processor runs the ffmpeg stages of the pipeline: trimming the raw product
// clips, merging them, muxing the voice-over and burning in the caption.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	trimSeconds float64
}

func NewProcessor(trimSeconds float64) *Processor {
	return &Processor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		trimSeconds: trimSeconds,
	}
}

func (p *Processor) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}

	return duration, nil
}

// Trim cuts trimSeconds off both ends of the clip. Clips too short to trim
// are copied through unchanged.
func (p *Processor) Trim(ctx context.Context, input, output string) error {
	duration, err := p.Duration(ctx, input)
	if err != nil {
		return err
	}

	newDuration := duration - 2*p.trimSeconds
	if newDuration <= 0 {
		return copyFile(input, output)
	}

	args := []string{
		"-i", input,
		"-ss", strconv.FormatFloat(p.trimSeconds, 'f', -1, 64),
		"-t", strconv.FormatFloat(newDuration, 'f', -1, 64),
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k", "-ar", "48000",
		"-r", "30",
		"-y", output,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w, output: %s", err, string(out))
	}

	return nil
}

// Merge concatenates the clips into one video via ffmpeg's concat demuxer.
func (p *Processor) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no clips to merge")
	}

	listPath := filepath.Join(filepath.Dir(output), "concat_list.txt")
	var list strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer func() { _ = os.Remove(listPath) }()

	args := []string{
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k", "-ar", "48000",
		"-r", "30",
		"-movflags", "+faststart",
		"-y", output,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w, output: %s", err, string(out))
	}

	return nil
}

// MuxAudio normalizes the voice-over and lays it over the merged video,
// cutting to the shorter of the two streams.
func (p *Processor) MuxAudio(ctx context.Context, videoPath, audioPath, output string) error {
	normalized := filepath.Join(filepath.Dir(output), "voiceover_normalized.aac")
	defer func() { _ = os.Remove(normalized) }()

	normArgs := []string{
		"-i", audioPath,
		"-ar", "48000", "-ac", "2", "-c:a", "aac", "-b:a", "192k",
		"-y", normalized,
	}
	cmd := exec.CommandContext(ctx, p.ffmpegPath, normArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio normalize failed: %w, output: %s", err, string(out))
	}

	args := []string{
		"-i", videoPath,
		"-i", normalized,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "copy",
		"-shortest",
		"-y", output,
	}
	cmd = exec.CommandContext(ctx, p.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w, output: %s", err, string(out))
	}

	return nil
}

// BurnCaption draws the overlay text in a boxed banner near the top of the
// frame. Longer captions get a smaller font so they stay inside the frame.
func (p *Processor) BurnCaption(ctx context.Context, videoPath, caption, output string) error {
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=60:box=1:boxcolor=black@0.85:boxborderw=25",
		escapeDrawtext(caption), captionFontSize(caption),
	)

	args := []string{
		"-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
		"-y", output,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg drawtext failed: %w, output: %s", err, string(out))
	}

	return nil
}

func captionFontSize(caption string) int {
	switch length := len([]rune(caption)); {
	case length > 70:
		return 28
	case length > 50:
		return 32
	default:
		return 38
	}
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	return nil
}
