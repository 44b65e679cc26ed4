package server

import (
	"context"
	"sync"

	"github.com/atikwanduka/watrack/internal/clicks"
	"github.com/atikwanduka/watrack/internal/messages"
)

type recordedClick struct {
	IP       string
	Text     string
	Referrer string
}

type stubClickService struct {
	mu        sync.Mutex
	recordErr error
	recorded  []recordedClick
	listRows  []clicks.ClickEvent
	listErr   error
	lastLimit int
}

func (s *stubClickService) Record(_ context.Context, ip, text, referrer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, recordedClick{IP: ip, Text: text, Referrer: referrer})
	return nil
}

func (s *stubClickService) ListRecent(_ context.Context, limit int) ([]clicks.ClickEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listRows, nil
}

func (s *stubClickService) recordedClicks() []recordedClick {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedClick, len(s.recorded))
	copy(out, s.recorded)
	return out
}

type storedMessage struct {
	FromPhone string
	Text      string
	MessageID string
}

type stubMessageService struct {
	mu       sync.Mutex
	storeErr error
	stored   []storedMessage
	listRows []messages.InboundMessage
	listErr  error

	// blockStore, when non-nil, stalls StoreIfAbsent until the channel closes.
	blockStore chan struct{}
	// storedSignal, when non-nil, receives one value per StoreIfAbsent call.
	storedSignal chan struct{}
}

func (s *stubMessageService) StoreIfAbsent(_ context.Context, fromPhone, text, messageID string) (bool, error) {
	if s.blockStore != nil {
		<-s.blockStore
	}
	s.mu.Lock()
	if s.storeErr == nil {
		s.stored = append(s.stored, storedMessage{FromPhone: fromPhone, Text: text, MessageID: messageID})
	}
	err := s.storeErr
	s.mu.Unlock()
	if s.storedSignal != nil {
		s.storedSignal <- struct{}{}
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *stubMessageService) ListRecent(_ context.Context, limit int) ([]messages.InboundMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listRows, nil
}

func (s *stubMessageService) storedMessages() []storedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storedMessage, len(s.stored))
	copy(out, s.stored)
	return out
}
