package usecase

import (
	"errors"
	"fmt"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

// ErrPersistence indicates an infrastructure failure inside a use case
// (store, object storage, timeouts). Callers surface it as unavailable.
var ErrPersistence = errors.New("chat use case persistence error")

// storeError passes domain outcomes through and wraps everything else.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, chat.ErrNotFound) || errors.Is(err, chat.ErrNotParticipant) || errors.Is(err, chat.ErrInvalidPayload) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
