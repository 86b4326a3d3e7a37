// Package chat relays free-text questions to a generative-language model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyMessage is returned when the message is blank after trimming.
	ErrEmptyMessage = errors.New("message is required")
	// ErrEmptyResponse is returned when the upstream model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Generator produces a reply to a single message with no prior history.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// Proxy validates chat messages and forwards them to a Generator.
type Proxy struct {
	gen    Generator
	logger *slog.Logger
}

// NewProxy returns a Proxy backed by gen. A nil logger uses slog.Default.
func NewProxy(gen Generator, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{gen: gen, logger: logger}
}

// Reply forwards message and returns the generated text verbatim.
func (p *Proxy) Reply(ctx context.Context, message string) (string, error) {
	msg := norm.NFC.String(strings.TrimSpace(message))
	if msg == "" {
		return "", ErrEmptyMessage
	}

	p.logger.InfoContext(ctx, "chat message received", "chars", len([]rune(msg)))
	reply, err := p.gen.Generate(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	p.logger.InfoContext(ctx, "chat response generated", "chars", len([]rune(reply)))
	return reply, nil
}
