package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeRecorder struct {
	key  string
	meta models.CodeEvent
}

func (r *codeRecorder) RecordLocalEvent(_ context.Context, key string, meta models.CodeEvent) (bool, error) {
	r.key, r.meta = key, meta
	return true, nil
}

func TestCodeService_Create(t *testing.T) {
	rec := &codeRecorder{}
	s := NewCodeService(RendererFunc(func(_ context.Context, content string) (string, error) {
		return "img/" + content + ".png", nil
	}), rec)

	ok, err := s.Create(context.Background(), "  hello ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", rec.key)
	assert.Equal(t, "img/hello.png", rec.meta.ImageRef)
}

func TestCodeService_Errors(t *testing.T) {
	rec := &codeRecorder{}
	s := NewCodeService(RendererFunc(func(context.Context, string) (string, error) {
		return "", errors.New("renderer down")
	}), rec)

	_, err := s.Create(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = s.Create(context.Background(), "x")
	require.ErrorContains(t, err, "render code")
	assert.Empty(t, rec.key)
}
