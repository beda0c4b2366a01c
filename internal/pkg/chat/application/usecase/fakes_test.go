package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

type emitted struct {
	event          string
	conversationID string
	viewerID       string
	messageIDs     []string
	message        chat.Message
}

// fakeEmitter records emissions. rooms maps user to the conversation they
// are looking at; online lists users with any connection.
type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	rooms  map[string]string
	online map[string]bool
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{rooms: map[string]string{}, online: map[string]bool{}}
}

func (f *fakeEmitter) EmitNewMessage(conversationID string, msg chat.Message) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: "newMessage", conversationID: conversationID, message: msg})
	return 1
}

func (f *fakeEmitter) EmitMessagesSeen(conversationID, viewerID string, ids []string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: "messagesSeen", conversationID: conversationID, viewerID: viewerID, messageIDs: ids})
	return 1
}

func (f *fakeEmitter) IsUserInRoom(userID, conversationID string) bool {
	return f.rooms[userID] == conversationID
}

func (f *fakeEmitter) IsUserOnline(userID string) bool {
	return f.online[userID] || f.rooms[userID] != ""
}

func (f *fakeEmitter) byEvent(event string) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type published struct {
	topic   string
	payload any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{topic: topic, payload: payload})
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeProfiles map[string]chat.Profile

func (f fakeProfiles) FindByID(_ context.Context, id string) (chat.Profile, error) {
	if id == "down" {
		return chat.Profile{}, errors.New("connection refused")
	}
	p, ok := f[id]
	if !ok {
		return chat.Profile{}, profiles.ErrProfileNotFound
	}
	return p, nil
}
