package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// fakeTransport is an in-memory Transport for tests.
type fakeTransport struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool
	fail   bool
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("write failed")
	}
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeConversationStore is an in-memory membership authority.
type fakeConversationStore struct {
	mu           sync.Mutex
	participants map[uint][]uint // conversationID -> userIDs
	err          error
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{participants: make(map[uint][]uint)}
}

func (f *fakeConversationStore) add(conversationID uint, userIDs ...uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[conversationID] = append(f.participants[conversationID], userIDs...)
}

func (f *fakeConversationStore) IsParticipant(userID, conversationID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, id := range f.participants[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConversationStore) ParticipantsOf(conversationID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]uint(nil), f.participants[conversationID]...), nil
}

func (f *fakeConversationStore) ConversationsOf(userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var result []uint
	for conversationID, userIDs := range f.participants {
		for _, id := range userIDs {
			if id == userID {
				result = append(result, conversationID)
				break
			}
		}
	}
	return result, nil
}

// fakeBroadcaster records every broadcast instead of fanning out.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastCall
}

type broadcastCall struct {
	conversationID uint
	event          Event
	exclude        string
}

func (f *fakeBroadcaster) Broadcast(conversationID uint, event Event, excludeConnID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcastCall{conversationID, event, excludeConnID})
}

func (f *fakeBroadcaster) calls() []broadcastCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcastCall(nil), f.events...)
}

func (f *fakeBroadcaster) countOf(eventType string) int {
	n := 0
	for _, c := range f.calls() {
		if c.event.Type == eventType {
			n++
		}
	}
	return n
}

// fakeDeliveryStore keeps receipts in a map, like the GORM repository would.
type fakeDeliveryStore struct {
	mu      sync.Mutex
	records map[[2]uint]*models.DeliveryRecord
	saves   int
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{records: make(map[[2]uint]*models.DeliveryRecord)}
}

func (f *fakeDeliveryStore) SaveBatch(records []*models.DeliveryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		cp := *rec
		f.records[[2]uint{rec.MessageID, rec.RecipientID}] = &cp
		f.saves++
	}
	return nil
}

func (f *fakeDeliveryStore) Save(record *models.DeliveryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *record
	f.records[[2]uint{record.MessageID, record.RecipientID}] = &cp
	f.saves++
	return nil
}

func (f *fakeDeliveryStore) Find(messageID, recipientID uint) (*models.DeliveryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[[2]uint{messageID, recipientID}]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *rec
	return &cp, nil
}

// fakeMessageStatusStore records aggregate status updates.
type fakeMessageStatusStore struct {
	mu      sync.Mutex
	updates []models.MessageStatus
}

func (f *fakeMessageStatusStore) UpdateStatus(messageID uint, status models.MessageStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, status)
	return nil
}

func (f *fakeMessageStatusStore) statuses() []models.MessageStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MessageStatus(nil), f.updates...)
}

// fakePresence reports a fixed set of online users.
type fakePresence struct {
	online map[uint]bool
}

func (f *fakePresence) StatusOf(userID uint) Status {
	return Status{Online: f.online[userID]}
}

// fakePush records which users were handed to the push pipeline.
type fakePush struct {
	mu      sync.Mutex
	userIDs []uint
}

func (f *fakePush) Notify(userID uint, event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userIDs = append(f.userIDs, userID)
}

func (f *fakePush) notified() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.userIDs...)
}
