package realtime

import (
	"encoding/json"
	"sync"
)

type fakePeer struct {
	id     string
	userID string

	mu     sync.Mutex
	frames [][]byte
}

func newFakePeer(id, userID string) *fakePeer {
	return &fakePeer{id: id, userID: userID}
}

func (f *fakePeer) ID() string     { return f.id }
func (f *fakePeer) UserID() string { return f.userID }

func (f *fakePeer) Send(payload []byte) error {
	f.mu.Lock()
	f.frames = append(f.frames, payload)
	f.mu.Unlock()
	return nil
}

// events returns the decoded frames with the given event name.
func (f *fakePeer) events(name string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []json.RawMessage
	for _, raw := range f.frames {
		var fr Frame
		if err := json.Unmarshal(raw, &fr); err == nil && fr.Event == name {
			out = append(out, fr.Data)
		}
	}
	return out
}

func (f *fakePeer) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}
