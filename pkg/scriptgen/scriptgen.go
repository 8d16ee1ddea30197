package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harunnryd/newsroom/pkg/configutil"
	"github.com/harunnryd/newsroom/pkg/errorsx"
	"github.com/harunnryd/newsroom/pkg/voices"
)

// Config for the script-generation collaborator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator writes a speaker-tagged script for a topic via a chat model.
// This is an optional front end to the audio pipeline; a pre-written
// script file bypasses it entirely.
type Generator struct {
	client *openai.Client
	model  string
}

func New(cfg Config) (*Generator, error) {
	if err := configutil.RequireString(cfg.APIKey, "scriptgen.settings.api_key"); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Generate returns raw script text: one `SPEAKER: text with [tags]` line
// per turn, ready for script.Parse.
func (g *Generator) Generate(ctx context.Context, topic string, format voices.FormatKind, length Length, notes string) (string, error) {
	system, ok := systemPrompts[format]
	if !ok {
		return "", fmt.Errorf("no prompt for format %s", format)
	}
	system += "\n\n" + length.wordGuidance()

	if strings.TrimSpace(notes) == "" {
		notes = "No research available. Use internal knowledge."
	}
	user := fmt.Sprintf(
		"Topic: %s\n\nResearch:\n%s\n\n"+
			"Write the script now. Output ONLY the dialogue lines in the format:\n"+
			"SPEAKER: [optional tag] text with more [tags] inline as needed\n\n"+
			"One line per speaker turn. No stage directions, no headers, no markdown.",
		topic, notes,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonScriptGen)
	}
	if len(resp.Choices) == 0 {
		return "", errorsx.Wrap(errors.New("empty completion"), errorsx.ReasonScriptGen)
	}
	return resp.Choices[0].Message.Content, nil
}
