package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	for _, n := range []int{0, 16, 32} {
		s, err := MakeRandHexString(n)
		require.NoError(t, err)
		assert.Len(t, s, n*2)
		_, err = hex.DecodeString(s)
		assert.NoError(t, err)
	}

	a, _ := MakeRandHexString(32)
	b, _ := MakeRandHexString(32)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	key := []byte("master key material")
	WipeByteArray(key)
	assert.Equal(t, make([]byte, len(key)), key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrPersistence, errors.New("disk full"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrInsufficientEnergy)

	err = fmt.Errorf("redeem %q: %w", "r1", ErrInsufficientEnergy)
	assert.ErrorIs(t, err, ErrInsufficientEnergy)
}
