package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionLifecycle(t *testing.T) {
	t.Run("IdleHandleIsInactive", func(t *testing.T) {
		exec := NewExecution()
		assert.False(t, exec.IsActive())
		assert.Nil(t, exec.Session())
	})

	t.Run("BindActivates", func(t *testing.T) {
		exec := NewExecution()
		_, cancel := context.WithCancel(context.Background())
		defer cancel()

		session := &fakeSession{}
		exec.bind(session, cancel)

		assert.True(t, exec.IsActive())
		assert.Same(t, session, exec.Session().(*fakeSession))
	})

	t.Run("CancelReportsInactiveImmediately", func(t *testing.T) {
		exec := NewExecution()
		ctx, cancel := context.WithCancel(context.Background())
		exec.bind(&fakeSession{}, cancel)

		// The attempt has not cleared the handle yet; cancellation alone
		// must already flip it inactive.
		exec.Cancel()
		assert.False(t, exec.IsActive())
		assert.Error(t, ctx.Err())

		exec.clear()
		assert.False(t, exec.IsActive())
		assert.Nil(t, exec.Session())
	})

	t.Run("CancelOnIdleIsNoOp", func(t *testing.T) {
		exec := NewExecution()
		exec.Cancel()
		exec.Cancel()
		assert.False(t, exec.IsActive())
	})
}
