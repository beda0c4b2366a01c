package adapter

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruturajs19/chat-app/internal/infrastructure/database"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

// newPgRepo connects to CHAT_TEST_DATABASE_URL and applies migrations,
// skipping when no database is configured or reachable.
func newPgRepo(t *testing.T) *PgChatRepository {
	t.Helper()
	dsn := os.Getenv("CHAT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CHAT_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(pool, zerolog.Nop()))
	return NewPgChatRepository(pool)
}

// uniqueUser keeps runs against a shared database apart.
func uniqueUser(name string) string {
	return name + "-" + uuid.NewString()[:8]
}

func TestPgNilPool(t *testing.T) {
	var r *PgChatRepository
	ctx := context.Background()

	_, _, err := r.FindOrCreateConversation(ctx, chat.Pair{Low: "a", High: "b"})
	assert.ErrorIs(t, err, errNilPool)
	_, err = r.GetConversation(ctx, uuid.NewString())
	assert.ErrorIs(t, err, errNilPool)

	empty := NewPgChatRepository((*pgxpool.Pool)(nil))
	_, err = empty.ListMessages(ctx, uuid.NewString())
	assert.ErrorIs(t, err, errNilPool)
	_, err = empty.MarkSeen(ctx, uuid.NewString(), "bob", time.Now(), time.Time{})
	assert.ErrorIs(t, err, errNilPool)
}

func TestPgColumnHelpers(t *testing.T) {
	text, sender := "hi", "alice"
	assert.Nil(t, latestFromColumns(nil, &sender))
	assert.Nil(t, latestFromColumns(&text, nil))
	assert.Equal(t, &chat.LatestMessage{Text: "hi", SenderID: "alice"}, latestFromColumns(&text, &sender))

	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("key"))
	assert.Equal(t, "key", *nullable("key"))
}

func TestPgFindOrCreateConversationConcurrent(t *testing.T) {
	r := newPgRepo(t)
	ctx := context.Background()

	// Mixed case orders differently under byte and locale collation.
	a, b := uniqueUser("alice"), uniqueUser("Bob")
	pairs := []chat.Pair{mustPair(t, a, b), mustPair(t, b, a)}

	const callers = 16
	ids := make([]string, callers)
	created := make([]bool, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, ok, err := r.FindOrCreateConversation(ctx, pairs[i%2])
			ids[i], created[i], errs[i] = conv.ID, ok, err
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
		if created[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	conv, err := r.GetConversation(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, pairs[0], conv.Participants)
	assert.Nil(t, conv.LatestMessage)
}

func TestPgAppendListAndMarkSeen(t *testing.T) {
	r := newPgRepo(t)
	ctx := context.Background()
	alice, bob := uniqueUser("alice"), uniqueUser("bob")

	conv, _, err := r.FindOrCreateConversation(ctx, mustPair(t, alice, bob))
	require.NoError(t, err)

	post := func(sender, text string, img *chat.Image) chat.Message {
		m, err := chat.NewMessage(conv.ID, sender, text, img)
		require.NoError(t, err)
		stored, err := r.AppendMessage(ctx, m)
		require.NoError(t, err)
		return stored
	}
	m1 := post(alice, "hello", nil)
	m2 := post(alice, "", &chat.Image{URL: "https://img.test/k", PublicID: "k"})
	m3 := post(bob, "hey", nil)
	assert.True(t, m2.CreatedAt.After(m1.CreatedAt))

	got, err := r.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LatestMessage)
	assert.Equal(t, chat.LatestMessage{Text: "hey", SenderID: bob}, *got.LatestMessage)
	assert.False(t, got.UpdatedAt.Before(m3.CreatedAt))

	msgs, err := r.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{m1.ID, m2.ID, m3.ID}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	require.NotNil(t, msgs[1].Image)
	assert.Equal(t, "k", msgs[1].Image.PublicID)

	list, err := r.ListConversationsForUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].UnseenCount)

	at := time.Now().UTC().Truncate(time.Microsecond)
	ids, err := r.MarkSeen(ctx, conv.ID, bob, at, m1.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, []string{m1.ID}, ids, "bounded by the listed message")

	ids, err = r.MarkSeen(ctx, conv.ID, bob, at, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{m2.ID}, ids)

	ids, err = r.MarkSeen(ctx, conv.ID, bob, at.Add(time.Hour), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, ids)

	msgs, err = r.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, msgs[0].SeenAt)
	assert.True(t, at.Equal(*msgs[0].SeenAt))
	assert.False(t, msgs[2].Seen, "own messages stay unseen")
}

func TestPgUnknownConversation(t *testing.T) {
	r := newPgRepo(t)
	ctx := context.Background()

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		_, err := r.GetConversation(ctx, id)
		assert.ErrorIs(t, err, chat.ErrNotFound, id)
		_, err = r.ListMessages(ctx, id)
		assert.ErrorIs(t, err, chat.ErrNotFound, id)
		_, err = r.MarkSeen(ctx, id, "bob", time.Now(), time.Time{})
		assert.ErrorIs(t, err, chat.ErrNotFound, id)
	}

	m, err := chat.NewMessage(uuid.NewString(), "alice", "hi", nil)
	require.NoError(t, err)
	_, err = r.AppendMessage(ctx, m)
	assert.ErrorIs(t, err, chat.ErrNotFound)
}

func TestPgAppendRejectsOutsider(t *testing.T) {
	r := newPgRepo(t)
	ctx := context.Background()
	conv, _, err := r.FindOrCreateConversation(ctx, mustPair(t, uniqueUser("alice"), uniqueUser("bob")))
	require.NoError(t, err)

	m, err := chat.NewMessage(conv.ID, uniqueUser("mallory"), "hi", nil)
	require.NoError(t, err)
	_, err = r.AppendMessage(ctx, m)
	assert.ErrorIs(t, err, chat.ErrNotParticipant)

	msgs, err := r.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
