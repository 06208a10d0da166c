package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIVoice = "nova"

type OpenAISpeech struct {
	client *openai.Client
	apiKey string
	voice  string
}

func NewOpenAISpeech(apiKey, voice string, opts ...option.RequestOption) *OpenAISpeech {
	if voice == "" {
		voice = DefaultOpenAIVoice
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAISpeech{client: &client, apiKey: apiKey, voice: voice}
}

func (o *OpenAISpeech) Name() string {
	return "openai-speech"
}

func (o *OpenAISpeech) Synthesize(ctx context.Context, text, path string) error {
	if o.apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrUnavailable)
	}

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
