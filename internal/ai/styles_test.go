package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableStyles(t *testing.T) {
	styles := AvailableStyles()

	assert.Len(t, styles, 5)
	assert.Contains(t, styles, StyleBalanced)
	assert.Contains(t, styles, StyleSummary)
	assert.Contains(t, styles, StyleEducational)
	assert.Contains(t, styles, StyleNarrative)
	assert.Contains(t, styles, StyleQA)

	// Stable order across calls.
	assert.Equal(t, styles, AvailableStyles())
}

func TestPromptForStyle(t *testing.T) {
	t.Run("known style has language placeholder", func(t *testing.T) {
		for _, name := range AvailableStyles() {
			prompt, err := PromptForStyle(name)
			require.NoError(t, err, name)
			assert.True(t, strings.Contains(prompt, "[Language]"),
				"style %q prompt should contain the [Language] placeholder", name)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		_, err := PromptForStyle("Haiku")
		assert.ErrorIs(t, err, ErrUnknownStyle)
	})
}

func TestResolveStyles(t *testing.T) {
	t.Run("empty request resolves to all styles", func(t *testing.T) {
		resolved, err := ResolveStyles(nil)
		require.NoError(t, err)
		assert.Equal(t, AvailableStyles(), resolved)
	})

	t.Run("subset preserved in request order", func(t *testing.T) {
		resolved, err := ResolveStyles([]string{StyleQA, StyleSummary})
		require.NoError(t, err)
		assert.Equal(t, []string{StyleQA, StyleSummary}, resolved)
	})

	t.Run("unknown name fails the whole resolution", func(t *testing.T) {
		_, err := ResolveStyles([]string{StyleSummary, "Interpretive Dance"})
		assert.ErrorIs(t, err, ErrUnknownStyle)
	})
}
