package notes

import (
	"sync"
	"time"

	"mip-notes/internal/model"
)

// EventType тип события изменения заметки
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// subscriberBuffer размер буфера канала подписчика
const subscriberBuffer = 16

// NoteEvent событие изменения заметки. Для deleted заполнен только Note.UUID.
type NoteEvent struct {
	Type EventType
	Note model.Note
	At   time.Time
}

// EventService управляет подписчиками на события изменения заметок
type EventService struct {
	subscribers map[chan NoteEvent]struct{}
	mu          sync.RWMutex
}

// NewEventService создает новый экземпляр EventService
func NewEventService() *EventService {
	return &EventService{
		subscribers: make(map[chan NoteEvent]struct{}),
	}
}

// Subscribe добавляет нового подписчика и возвращает канал для получения событий
func (s *EventService) Subscribe() <-chan NoteEvent {
	ch := make(chan NoteEvent, subscriberBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (s *EventService) Unsubscribe(sub <-chan NoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		if ch == sub {
			close(ch)
			delete(s.subscribers, ch)
			return
		}
	}
}

// Subscribers возвращает количество активных подписчиков
func (s *EventService) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Close закрывает каналы всех подписчиков
func (s *EventService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, ch)
	}
}

// Publish отправляет событие всем подписчикам, не блокируя вызывающего.
// Если канал подписчика переполнен, событие для него пропускается.
func (s *EventService) Publish(event NoteEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
