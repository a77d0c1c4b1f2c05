package achievements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func TestAddAndList(t *testing.T) {
	s := NewService()

	_, err := s.Add(1, "Аня", "первый")
	require.NoError(t, err)
	_, err = s.Add(1, "Аня", "  второй  ")
	require.NoError(t, err)

	list := s.List(1)
	require.Len(t, list, 2)
	assert.Equal(t, "первый", list[0].Text)
	assert.Equal(t, "второй", list[1].Text)
	assert.Equal(t, "Аня", list[1].UserName)

	list[0].Text = "changed"
	assert.Equal(t, "первый", s.List(1)[0].Text)
	assert.Empty(t, s.List(2))
}

func TestAddValidation(t *testing.T) {
	s := NewService()

	_, err := s.Add(1, "x", "   ")
	require.ErrorIs(t, err, common.ErrEmptyText)

	_, err = s.Add(1, "x", strings.Repeat("я", MaxTextRunes+1))
	require.ErrorIs(t, err, common.ErrTextTooLong)

	_, err = s.Add(1, "x", strings.Repeat("я", MaxTextRunes))
	require.NoError(t, err)
}

func TestFormatList(t *testing.T) {
	assert.Contains(t, FormatList("Аня", nil), "пока нет достижений")

	s := NewService()
	_, err := s.Add(1, "Аня", "марафон")
	require.NoError(t, err)
	assert.Contains(t, FormatList("Аня", s.List(1)), "1. марафон")
}
