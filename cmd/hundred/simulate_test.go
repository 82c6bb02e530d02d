package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
)

func TestParseDifficulties(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    [game.SeatCount]bot.Difficulty
		wantErr bool
	}{
		{"one for all", []string{"CASUAL"}, [game.SeatCount]bot.Difficulty{bot.Casual, bot.Casual, bot.Casual, bot.Casual}, false},
		{"per seat", []string{"SMART", "CASUAL", "SMART", "CASUAL"}, [game.SeatCount]bot.Difficulty{bot.Smart, bot.Casual, bot.Smart, bot.Casual}, false},
		{"wrong count", []string{"SMART", "CASUAL"}, [game.SeatCount]bot.Difficulty{}, true},
		{"unknown", []string{"GENIUS"}, [game.SeatCount]bot.Difficulty{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDifficulties(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
