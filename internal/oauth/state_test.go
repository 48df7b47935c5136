package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMintAndVerify(t *testing.T) {
	s := NewStateSigner("secret")

	state, err := s.Mint()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	assert.NoError(t, s.Verify(state))
}

func TestStateRejectsTampered(t *testing.T) {
	s := NewStateSigner("secret")
	state, err := s.Mint()
	require.NoError(t, err)

	assert.Error(t, s.Verify(state+"x"))
	assert.Error(t, s.Verify(""))
	assert.Error(t, s.Verify("not-a-token"))
}

func TestStateRejectsWrongSecret(t *testing.T) {
	state, err := NewStateSigner("secret-a").Mint()
	require.NoError(t, err)

	assert.Error(t, NewStateSigner("secret-b").Verify(state))
}

func TestStatesAreUnique(t *testing.T) {
	s := NewStateSigner("secret")
	a, err := s.Mint()
	require.NoError(t, err)
	b, err := s.Mint()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
