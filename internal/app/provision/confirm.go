package provision

import (
	"context"
	"fmt"
)

// Prompt names a yes/no question the workflow may put to the operator.
type Prompt string

const (
	// PromptDiscardCart: switching away from a visitor whose cart is not empty.
	PromptDiscardCart Prompt = "discard_cart"
	// PromptRemoveActive: removing the active visitor while its cart is not empty.
	PromptRemoveActive Prompt = "remove_active"
	// PromptRestoreHold: the newly activated visitor has a held cart.
	PromptRestoreHold Prompt = "restore_hold"
)

// Confirmer answers prompts. Implementations may block waiting for the operator.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Always answers every prompt with the same value.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		return answer, nil
	})
}

// ConfirmationRequiredError is returned when a prompt has no answer yet. The
// caller is expected to ask the operator and retry with the answer.
type ConfirmationRequiredError struct {
	Prompt Prompt
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Prompt)
}

// AnswerConfirmer answers from a fixed set of pre-collected answers, as sent by
// a stateless client together with its request.
type AnswerConfirmer map[Prompt]bool

func (a AnswerConfirmer) Confirm(_ context.Context, prompt Prompt) (bool, error) {
	answer, ok := a[prompt]
	if !ok {
		return false, &ConfirmationRequiredError{Prompt: prompt}
	}
	return answer, nil
}
