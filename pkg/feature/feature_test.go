package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusBacklog, StatusInProgress, StatusWaitingApproval, StatusVerified} {
		assert.True(t, ValidStatus(s), "status %q should be valid", s)
	}
	assert.False(t, ValidStatus("done"))
	assert.False(t, ValidStatus(""))
}

func TestPassed(t *testing.T) {
	t.Run("VerifiedAlwaysPasses", func(t *testing.T) {
		f := &Feature{Status: StatusVerified}
		assert.True(t, f.Passed())

		f.SkipTests = true
		assert.True(t, f.Passed())
	})

	t.Run("WaitingApprovalPassesOnlyWhenTestsSkipped", func(t *testing.T) {
		f := &Feature{Status: StatusWaitingApproval}
		assert.False(t, f.Passed())

		f.SkipTests = true
		assert.True(t, f.Passed())
	})

	t.Run("NonTerminalStatusesFail", func(t *testing.T) {
		for _, s := range []Status{StatusBacklog, StatusInProgress} {
			f := &Feature{Status: s, SkipTests: true}
			assert.False(t, f.Passed(), "status %q should not pass", s)
		}
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, (&Feature{Status: StatusVerified}).IsTerminal())
	assert.False(t, (&Feature{Status: StatusWaitingApproval}).IsTerminal())
	assert.False(t, (&Feature{Status: StatusBacklog}).IsTerminal())
}
