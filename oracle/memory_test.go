package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryOracle(t *testing.T) {
	o := NewMemoryOracle()
	o.SetBalance("0xAsset", "0xHolder", 600)

	t.Run("Known balance", func(t *testing.T) {
		outcome := o.BalanceOf("0xAsset", "0xHolder")
		assert.True(t, outcome.OK())
		assert.Equal(t, uint64(600), outcome.Balance)
	})

	t.Run("Unknown holder reports zero", func(t *testing.T) {
		outcome := o.BalanceOf("0xAsset", "0xStranger")
		assert.True(t, outcome.OK())
		assert.Zero(t, outcome.Balance)
	})

	t.Run("Unknown asset reports zero", func(t *testing.T) {
		outcome := o.BalanceOf("0xOtherAsset", "0xHolder")
		assert.True(t, outcome.OK())
		assert.Zero(t, outcome.Balance)
	})

	t.Run("Injected failure and recovery", func(t *testing.T) {
		cause := errors.New("rpc down")
		o.FailWith(cause)

		outcome := o.BalanceOf("0xAsset", "0xHolder")
		assert.False(t, outcome.OK())
		assert.Equal(t, StatusUnavailable, outcome.Status)
		assert.Equal(t, cause, outcome.Err)

		o.FailWith(nil)
		assert.True(t, o.BalanceOf("0xAsset", "0xHolder").OK())
	})
}

func TestOutcomeConstructors(t *testing.T) {
	assert.True(t, Success(5).OK())
	assert.False(t, Unavailable(errors.New("x")).OK())
	assert.False(t, Failed(errors.New("x")).OK())
	assert.Equal(t, StatusError, Failed(errors.New("x")).Status)
}
