package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
)

// ErrEmptyContent is returned when a code with no content is created.
var ErrEmptyContent = errors.New("code content is empty")

// Renderer produces the rendered image of a code and returns a reference to
// it. Rendering itself happens outside this module.
type Renderer interface {
	Render(ctx context.Context, content string) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, content string) (string, error)

func (f RendererFunc) Render(ctx context.Context, content string) (string, error) {
	return f(ctx, content)
}

// CodeRecorder records a created code in history. *history.Codes
// implements it.
type CodeRecorder interface {
	RecordLocalEvent(ctx context.Context, key string, meta models.CodeEvent) (bool, error)
}

type CodeService struct {
	renderer Renderer
	recorder CodeRecorder
}

func NewCodeService(renderer Renderer, recorder CodeRecorder) *CodeService {
	return &CodeService{renderer: renderer, recorder: recorder}
}

// Create renders content and registers it. It reports false when the same
// content was already registered.
func (s *CodeService) Create(ctx context.Context, content string) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, ErrEmptyContent
	}

	ref, err := s.renderer.Render(ctx, content)
	if err != nil {
		return false, fmt.Errorf("render code: %w", err)
	}

	return s.recorder.RecordLocalEvent(ctx, content, models.CodeEvent{ImageRef: ref})
}
