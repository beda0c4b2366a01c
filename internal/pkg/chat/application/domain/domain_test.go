package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPair(t *testing.T) {
	p, err := NewPair("zoe", "adam")
	require.NoError(t, err)
	assert.Equal(t, Pair{Low: "adam", High: "zoe"}, p)

	q, err := NewPair("adam", "zoe")
	require.NoError(t, err)
	assert.Equal(t, p, q, "pair is order independent")

	other, ok := p.Other("adam")
	assert.True(t, ok)
	assert.Equal(t, "zoe", other)
	_, ok = p.Other("eve")
	assert.False(t, ok)

	_, err = NewPair("adam", "adam")
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = NewPair("", "adam")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		image    *Image
		wantType MessageType
		wantErr  bool
	}{
		{name: "text", text: "  hi  ", wantType: MessageTypeText},
		{name: "image", image: &Image{URL: "https://cdn/x.png", PublicID: "x"}, wantType: MessageTypeImage},
		{name: "blank text", text: "   ", wantErr: true},
		{name: "neither", wantErr: true},
		{name: "image without url", image: &Image{PublicID: "x"}, wantErr: true},
		{name: "both", text: "hi", image: &Image{URL: "https://cdn/x.png"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessage("c1", "alice", tt.text, tt.image)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, m.ID)
			assert.Equal(t, tt.wantType, m.Type)
			assert.False(t, m.Seen)
		})
	}

	m, err := NewMessage("c1", "alice", "  hi  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", m.Text)
	assert.Equal(t, "hi", m.Preview())

	img, err := NewMessage("c1", "alice", "", &Image{URL: "u"})
	require.NoError(t, err)
	assert.Equal(t, ImagePreview, img.Preview())
}

func TestPostMessage(t *testing.T) {
	pair, _ := NewPair("alice", "bob")
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := NewConversation("c1", pair, start)

	m, _ := NewMessage("c1", "alice", "hi", nil)
	posted, err := conv.PostMessage(m, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), posted.CreatedAt)
	assert.Equal(t, posted.CreatedAt, conv.UpdatedAt)
	require.NotNil(t, conv.LatestMessage)
	assert.Equal(t, LatestMessage{Text: "hi", SenderID: "alice"}, *conv.LatestMessage)

	// A clock that went backwards never produces an older message.
	late, _ := NewMessage("c1", "bob", "yo", nil)
	posted, err = conv.PostMessage(late, start)
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute+time.Microsecond), posted.CreatedAt)

	same, _ := NewMessage("c1", "alice", "again", nil)
	posted, err = conv.PostMessage(same, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute+2*time.Microsecond), posted.CreatedAt)

	stranger, _ := NewMessage("c1", "eve", "hey", nil)
	_, err = conv.PostMessage(stranger, start)
	assert.ErrorIs(t, err, ErrNotParticipant)

	elsewhere, _ := NewMessage("c2", "alice", "hey", nil)
	_, err = conv.PostMessage(elsewhere, start)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMarkSeenIsMonotonic(t *testing.T) {
	m, _ := NewMessage("c1", "alice", "hi", nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, m.CanBeSeenBy("bob"))
	assert.False(t, m.CanBeSeenBy("alice"))

	assert.True(t, m.MarkSeen(at))
	assert.False(t, m.MarkSeen(at.Add(time.Hour)))
	require.NotNil(t, m.SeenAt)
	assert.Equal(t, at, *m.SeenAt)
	assert.False(t, m.CanBeSeenBy("bob"))
}
