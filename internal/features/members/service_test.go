package members

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func TestEnsureMemberAndLookup(t *testing.T) {
	s := NewService(NewRepository())

	s.EnsureMember(1, "Anna", "Анна", "")
	assert.True(t, s.IsMember(1))
	assert.False(t, s.IsMember(2))

	m, err := s.GetByUsername("@anna")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.UserID)
	assert.Equal(t, "@Anna", s.DisplayName(1))

	s.EnsureMember(1, "", "Анна", "Петрова")
	_, err = s.GetByUsername("anna")
	require.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Equal(t, "Анна Петрова", s.DisplayName(1))
	assert.Equal(t, "id99", s.DisplayName(99))
	assert.Equal(t, 1, s.Count())
}

func TestResolve(t *testing.T) {
	s := NewService(NewRepository())
	s.EnsureMember(5, "bob", "Bob", "")

	id, err := s.Resolve("@bob")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	id, err = s.Resolve("12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	_, err = s.Resolve("@ghost")
	require.ErrorIs(t, err, common.ErrUserNotFound)
}
