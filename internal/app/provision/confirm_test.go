package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerConfirmer(t *testing.T) {
	ctx := context.Background()
	c := AnswerConfirmer{PromptDiscardCart: false}

	ok, err := c.Confirm(ctx, PromptDiscardCart)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Confirm(ctx, PromptRestoreHold)
	var required *ConfirmationRequiredError
	require.True(t, errors.As(err, &required))
	assert.Equal(t, PromptRestoreHold, required.Prompt)
	assert.Contains(t, err.Error(), "restore_hold")
}

func TestAlways(t *testing.T) {
	ok, err := Always(true).Confirm(context.Background(), PromptRemoveActive)
	require.NoError(t, err)
	assert.True(t, ok)
}
