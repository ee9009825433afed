// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/paperboi/pkg/types"
)

const defaultPollInterval = time.Second

// OpenAIBackend implements Backend against the OpenAI Assistants thread
// API. The assistant profile is pre-provisioned; this code only
// addresses it by ID.
type OpenAIBackend struct {
	client       *openai.Client
	assistantID  string
	pollInterval time.Duration
}

// NewOpenAIBackend builds a backend from configuration. BaseURL is
// honored when set so tests can point at a local server.
func NewOpenAIBackend(cfg types.AssistantConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("assistant API key not configured")
	}
	if cfg.AssistantID == "" {
		return nil, errors.New("assistant ID not configured")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &OpenAIBackend{
		client:       openai.NewClientWithConfig(clientCfg),
		assistantID:  cfg.AssistantID,
		pollInterval: interval,
	}, nil
}

// CreateThread opens a fresh assistant thread.
func (b *OpenAIBackend) CreateThread(ctx context.Context) (string, error) {
	thread, err := b.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return thread.ID, nil
}

// SendMessage appends a user message to the thread.
func (b *OpenAIBackend) SendMessage(ctx context.Context, threadID, content string) error {
	_, err := b.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

// RunAndAwait starts a run on the thread, polls until it finishes, and
// returns the assistant's latest reply.
func (b *OpenAIBackend) RunAndAwait(ctx context.Context, threadID string) (string, error) {
	run, err := b.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: b.assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("creating run: %w", err)
	}

	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return b.latestAssistantMessage(ctx, threadID)
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			if run.LastError != nil {
				return "", fmt.Errorf("run ended with status %s: %s", run.Status, run.LastError.Message)
			}
			return "", fmt.Errorf("run ended with status %s", run.Status)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(b.pollInterval):
		}

		run, err = b.client.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return "", fmt.Errorf("polling run: %w", err)
		}
	}
}

func (b *OpenAIBackend) latestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	limit := 10
	list, err := b.client.ListMessage(ctx, threadID, &limit, nil, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("listing messages: %w", err)
	}

	// Messages arrive newest-first; take the first assistant turn.
	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, part := range msg.Content {
			if part.Text != nil && part.Text.Value != "" {
				return part.Text.Value, nil
			}
		}
	}
	return "", errors.New("no assistant reply in thread")
}
