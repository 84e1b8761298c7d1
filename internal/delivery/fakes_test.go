package delivery_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/store"
)

type pushCall struct {
	RecipientID uuid.UUID
	Event       string
	Payload     any
}

type fakePusher struct {
	mu     sync.Mutex
	active bool
	err    error
	calls  []pushCall
}

func (p *fakePusher) Push(_ context.Context, id uuid.UUID, event string, payload any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, pushCall{id, event, payload})
	if p.err != nil {
		return false, p.err
	}
	return p.active, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []*delivery.Mail
}

func (m *fakeMailer) Send(_ context.Context, mail *delivery.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type fakeContacts map[uuid.UUID]domain.Contact

func (c fakeContacts) GetContact(_ context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, ok := c[id]
	if !ok {
		return nil, store.ErrContactNotFound
	}
	return &contact, nil
}

type failingContacts struct{ err error }

func (c failingContacts) GetContact(context.Context, uuid.UUID) (*domain.Contact, error) {
	return nil, c.err
}
