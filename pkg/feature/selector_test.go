package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectNext(t *testing.T) {
	t.Run("SkipsVerifiedAndWaitingApproval", func(t *testing.T) {
		features := []*Feature{
			{ID: "f-1", Status: StatusVerified},
			{ID: "f-2", Status: StatusWaitingApproval},
			{ID: "f-3", Status: StatusBacklog},
			{ID: "f-4", Status: StatusBacklog},
		}

		next := SelectNext(features)
		require.NotNil(t, next)
		assert.Equal(t, "f-3", next.ID)
	})

	t.Run("InProgressIsEligible", func(t *testing.T) {
		features := []*Feature{
			{ID: "f-1", Status: StatusVerified},
			{ID: "f-2", Status: StatusInProgress},
		}

		next := SelectNext(features)
		require.NotNil(t, next)
		assert.Equal(t, "f-2", next.ID)
	})

	t.Run("ExhaustedBacklogYieldsNil", func(t *testing.T) {
		features := []*Feature{
			{ID: "f-1", Status: StatusVerified},
			{ID: "f-2", Status: StatusWaitingApproval},
		}
		assert.Nil(t, SelectNext(features))
	})

	t.Run("EmptyListYieldsNil", func(t *testing.T) {
		assert.Nil(t, SelectNext(nil))
		assert.Nil(t, SelectNext([]*Feature{}))
	})
}
