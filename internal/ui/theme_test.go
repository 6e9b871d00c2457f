package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelColorsDistinct(t *testing.T) {
	seen := map[string]Level{}
	for _, l := range []Level{LevelGreen, LevelYellow, LevelRed, LevelMuted} {
		hex := LevelColor(l).Hex()
		if prev, dup := seen[hex]; dup {
			t.Errorf("%v and %v share color %s", prev, l, hex)
		}
		seen[hex] = l
	}
}

func TestBarTrackBetweenMutedAndBackground(t *testing.T) {
	track := ColorBarTrack
	assert.NotEqual(t, ColorMuted.Hex(), track.Hex())
	assert.NotEqual(t, ColorBackground.Hex(), track.Hex())
}

func TestTag(t *testing.T) {
	assert.Equal(t, "[#228b22]", Tag(LevelColor(LevelGreen)))
}
