package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/estherpeter24/urge-backend/internal/models"
)

type deliveryKey struct {
	messageID   uint
	recipientID uint
}

type messageMeta struct {
	conversationID uint
	recipients     []uint
}

type presenceReader interface {
	StatusOf(userID uint) Status
}

// Delivery advances each message through sent -> delivered -> read per
// recipient. The in-memory table is authoritative for live sessions; records
// are written through the DeliveryStore (outside the table lock) and lazily
// reloaded from it after a restart.
type Delivery struct {
	mu      sync.Mutex
	records map[deliveryKey]*models.DeliveryRecord
	meta    map[uint]*messageMeta

	store       ConversationStore
	repo        DeliveryStore
	messages    MessageStatusStore
	broadcaster Broadcaster
	presence    presenceReader
	push        PushNotifier
	now         func() time.Time
}

func NewDelivery(store ConversationStore, repo DeliveryStore, messages MessageStatusStore,
	broadcaster Broadcaster, presence presenceReader, push PushNotifier) *Delivery {
	return &Delivery{
		records:     make(map[deliveryKey]*models.DeliveryRecord),
		meta:        make(map[uint]*messageMeta),
		store:       store,
		repo:        repo,
		messages:    messages,
		broadcaster: broadcaster,
		presence:    presence,
		push:        push,
		now:         time.Now,
	}
}

// Transition applies a monotonic state change with transitive timestamp
// back-fill. A strictly-backward target is rejected with
// ErrInvalidStateTransition and the record is left unchanged; an equal
// target is a no-op.
func Transition(rec *models.DeliveryRecord, target models.DeliveryState, at time.Time) (bool, error) {
	cur, tgt := rec.State.Rank(), target.Rank()
	if tgt < cur {
		return false, ErrInvalidStateTransition
	}
	if tgt == cur {
		return false, nil
	}

	switch target {
	case models.DeliveryDelivered:
		rec.DeliveredAt = &at
	case models.DeliveryRead:
		if rec.DeliveredAt == nil {
			// Read implies delivered: both stamps get the same instant.
			rec.DeliveredAt = &at
		}
		rec.ReadAt = &at
	}
	rec.State = target
	return true, nil
}

// Dispatch fans a newly stored message out: one SENT record per current
// participant except the sender, a message:received broadcast that skips the
// sender's originating connection, and a push hand-off for recipients who
// are offline right now. The only place delivery records are created.
func (d *Delivery) Dispatch(msg *models.Message, originConnID string) error {
	participants, err := d.store.ParticipantsOf(msg.ConversationID)
	if err != nil {
		return err
	}

	recipients := make([]uint, 0, len(participants))
	for _, userID := range participants {
		if userID != msg.SenderID {
			recipients = append(recipients, userID)
		}
	}

	var created []*models.DeliveryRecord
	d.mu.Lock()
	for _, userID := range recipients {
		key := deliveryKey{msg.ID, userID}
		if _, ok := d.records[key]; ok {
			continue // re-dispatch after a crash; existing receipt wins
		}
		rec := &models.DeliveryRecord{
			MessageID:      msg.ID,
			RecipientID:    userID,
			ConversationID: msg.ConversationID,
			State:          models.DeliverySent,
		}
		d.records[key] = rec
		cp := *rec
		created = append(created, &cp)
	}
	d.meta[msg.ID] = &messageMeta{conversationID: msg.ConversationID, recipients: recipients}
	d.mu.Unlock()

	if d.repo != nil && len(created) > 0 {
		if err := d.repo.SaveBatch(created); err != nil {
			log.Printf("realtime: persist receipts for message %d: %v", msg.ID, err)
		}
	}

	event := Event{Type: EventMessageReceived, Payload: msg.ToResponse()}
	d.broadcaster.Broadcast(msg.ConversationID, event, originConnID)

	for _, userID := range recipients {
		if d.push == nil {
			break
		}
		if status := d.presence.StatusOf(userID); !status.Online {
			go d.push.Notify(userID, event)
		}
	}

	return nil
}

// MarkDelivered transitions the recipient's record to DELIVERED with a
// server-authoritative timestamp. Duplicate acks are no-ops: the existing
// record comes back with changed=false.
func (d *Delivery) MarkDelivered(messageID, userID uint) (*models.DeliveryRecord, bool, error) {
	return d.mark(messageID, userID, models.DeliveryDelivered)
}

// MarkRead transitions to READ, back-filling DELIVERED with the same
// instant when the delivery ack never arrived.
func (d *Delivery) MarkRead(messageID, userID uint) (*models.DeliveryRecord, bool, error) {
	return d.mark(messageID, userID, models.DeliveryRead)
}

func (d *Delivery) mark(messageID, userID uint, target models.DeliveryState) (*models.DeliveryRecord, bool, error) {
	rec, err := d.record(messageID, userID)
	if err != nil {
		return nil, false, err
	}

	at := d.now()
	d.mu.Lock()
	if rec.State.Rank() >= target.Rank() {
		cp := *rec
		d.mu.Unlock()
		return &cp, false, nil
	}
	if _, err := Transition(rec, target, at); err != nil {
		cp := *rec
		d.mu.Unlock()
		return &cp, false, err
	}
	cp := *rec
	aggregate := d.allAtLeastLocked(messageID, target)
	d.mu.Unlock()

	if d.repo != nil {
		if err := d.repo.Save(&cp); err != nil {
			log.Printf("realtime: persist receipt %d/%d: %v", messageID, userID, err)
		}
	}
	if aggregate && d.messages != nil {
		status := models.StatusDelivered
		if target == models.DeliveryRead {
			status = models.StatusRead
		}
		if err := d.messages.UpdateStatus(messageID, status, at); err != nil {
			log.Printf("realtime: update message %d status: %v", messageID, err)
		}
	}

	switch target {
	case models.DeliveryDelivered:
		d.broadcaster.Broadcast(cp.ConversationID,
			Event{Type: EventMessageDelivered, Payload: MessageDeliveredPayload{MessageID: messageID, UserID: userID}}, "")
	case models.DeliveryRead:
		d.broadcaster.Broadcast(cp.ConversationID,
			Event{Type: EventMessageRead, Payload: MessageReadPayload{MessageID: messageID, UserID: userID, ConversationID: cp.ConversationID}}, "")
	}

	return &cp, true, nil
}

// RecordOf returns a copy of the current record, if any.
func (d *Delivery) RecordOf(messageID, userID uint) (*models.DeliveryRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[deliveryKey{messageID, userID}]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

// record resolves the in-memory receipt, falling back to the durable store
// for messages dispatched before a restart. A user with no record (joined
// the conversation after dispatch) yields ErrUnknownRecipient.
func (d *Delivery) record(messageID, userID uint) (*models.DeliveryRecord, error) {
	key := deliveryKey{messageID, userID}
	d.mu.Lock()
	rec, ok := d.records[key]
	d.mu.Unlock()
	if ok {
		return rec, nil
	}

	if d.repo == nil {
		return nil, ErrUnknownRecipient
	}
	stored, err := d.repo.Find(messageID, userID)
	if err != nil || stored == nil {
		return nil, ErrUnknownRecipient
	}

	d.mu.Lock()
	if existing, ok := d.records[key]; ok {
		stored = existing
	} else {
		d.records[key] = stored
	}
	d.mu.Unlock()
	return stored, nil
}

func (d *Delivery) allAtLeastLocked(messageID uint, target models.DeliveryState) bool {
	meta := d.meta[messageID]
	if meta == nil {
		return false
	}
	for _, userID := range meta.recipients {
		rec, ok := d.records[deliveryKey{messageID, userID}]
		if !ok || rec.State.Rank() < target.Rank() {
			return false
		}
	}
	return len(meta.recipients) > 0
}
