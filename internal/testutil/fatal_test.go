package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/flowir/internal/fatal"
)

func TestRequireFatal(t *testing.T) {
	fe := RequireFatal(t, fatal.ErrInputCount, func() {
		fatal.Fail(fatal.ErrInputCount, "expected %d inputs, got %d", 2, 1)
	})
	assert.Equal(t, "expected 2 inputs, got 1", fe.Message)
}

func TestRequireNotFatal(t *testing.T) {
	ran := false
	RequireNotFatal(t, func() { ran = true })
	assert.True(t, ran)
}
