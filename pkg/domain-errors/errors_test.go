package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeWalksWrappedChain(t *testing.T) {
	inner := New(CodeConflict, "slug taken")
	outer := Wrap(inner, CodeInternal, "failed to create domain")

	assert.True(t, HasCode(outer, CodeConflict))
	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.True(t, Is(outer, CodeInternal))
	assert.False(t, Is(outer, CodeConflict))
}

func TestCodeOfAndMessageOf(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeNotFound, "Domain not found"))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, "Domain not found", MessageOf(err))

	plain := errors.New("boom")
	assert.Equal(t, CodeInternal, CodeOf(plain))
	assert.Empty(t, MessageOf(plain))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load offers")
	assert.Equal(t, "failed to load offers: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
