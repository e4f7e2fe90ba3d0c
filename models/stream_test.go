package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStream(t *testing.T) {
	for _, valid := range []string{"updates", "all", "music_all"} {
		stream, err := ParseStream(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, stream.String())
	}

	_, err := ParseStream("everything")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestStreamSettings_EffectiveInterval(t *testing.T) {
	settings := &StreamSettings{Stream: StreamAll}
	assert.Equal(t, StreamAll.DefaultInterval(), settings.EffectiveInterval())

	override := 90
	settings.IntervalMinutes = &override
	assert.Equal(t, 90, settings.EffectiveInterval())
}

func TestStreamSettings_HasChannel(t *testing.T) {
	settings := &StreamSettings{Stream: StreamAll}
	assert.False(t, settings.HasChannel())

	channel := int64(555)
	settings.ChannelID = &channel
	assert.True(t, settings.HasChannel())
}
