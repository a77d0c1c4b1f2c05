package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"serotonyl.ru/vending-bot/internal/config"
	"serotonyl.ru/vending-bot/internal/features/moderation"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cases := []struct {
		in      string
		cmd     string
		args    []string
		command bool
	}{
		{"!купить 2", "купить", []string{"2"}, true},
		{"  .Баланс  ", "баланс", nil, true},
		{"/start@vending_bot", "start", nil, true},
		{"!nuke 50", "nuke", []string{"50"}, true},
		{"!", "", nil, false},
		{"привет", "", nil, false},
	}
	for _, tc := range cases {
		cmd, args, ok := p.ParseCommand(tc.in)
		assert.Equal(t, tc.command, ok, tc.in)
		assert.Equal(t, tc.cmd, cmd, tc.in)
		assert.Equal(t, tc.args, args, tc.in)
	}
}

func TestShouldTrackSkipsNukeCommand(t *testing.T) {
	b := &Bot{
		cfg:     &config.Config{MainChatID: -1001},
		tracker: moderation.NewTracker(moderation.MaxTracked),
		parser:  NewCommandParser(),
	}
	msg := func(chatID int64, text string) *tgbotapi.Message {
		return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	}

	assert.True(t, b.shouldTrack(msg(-1001, "привет")))
	assert.True(t, b.shouldTrack(msg(-1001, "!баланс")))
	assert.True(t, b.shouldTrack(msg(-1001, "")))
	assert.False(t, b.shouldTrack(msg(-1001, "!nuke 5")))
	assert.False(t, b.shouldTrack(msg(-1001, "/nuke@vending_bot")))
	assert.False(t, b.shouldTrack(msg(42, "привет")))
}
