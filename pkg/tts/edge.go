package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const DefaultVoice = "zh-CN-XiaoxiaoNeural"

// EdgeTTS shells out to the edge-tts command line tool.
type EdgeTTS struct {
	binary string
	voice  string
}

func NewEdgeTTS(binary, voice string) *EdgeTTS {
	if binary == "" {
		binary = "edge-tts"
	}
	if voice == "" {
		voice = DefaultVoice
	}
	return &EdgeTTS{binary: binary, voice: voice}
}

func (e *EdgeTTS) Name() string {
	return "edge-tts"
}

func (e *EdgeTTS) args(text, path string) []string {
	return []string{"--voice", e.voice, "--text", text, "--write-media", path}
}

func (e *EdgeTTS) Synthesize(ctx context.Context, text, path string) error {
	bin, err := exec.LookPath(e.binary)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrUnavailable, e.binary)
	}

	out, err := exec.CommandContext(ctx, bin, e.args(text, path)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("edge-tts: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
