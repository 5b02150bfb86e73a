package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

// memRepo is an in-memory NotificationRepository with the same semantics as the real stores.
type memRepo struct {
	mu       sync.Mutex
	items    map[string]domain.Notification
	createFn func(*domain.Notification) error
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]domain.Notification{}}
}

func (r *memRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createFn != nil {
		if err := r.createFn(n); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = *n
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (r *memRepo) FindActiveByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.items {
		if n.UserID == userID && n.Active {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 {
		if offset >= len(out) {
			return []domain.Notification{}, nil
		}
		out = out[offset:min(len(out), offset+limit)]
	}
	return out, nil
}

func (r *memRepo) update(id string, at time.Time, fn func(*domain.Notification)) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	fn(&n)
	n.UpdatedAt = at
	r.items[id] = n
	return &n, nil
}

func (r *memRepo) MarkAsRead(_ context.Context, id string, at time.Time) (*domain.Notification, error) {
	return r.update(id, at, func(n *domain.Notification) { n.Read = true })
}

func (r *memRepo) MarkAllAsRead(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.items {
		if n.UserID == userID && n.Active && !n.Read {
			n.Read = true
			n.UpdatedAt = at
			r.items[id] = n
			count++
		}
	}
	return count, nil
}

func (r *memRepo) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Notification, error) {
	return r.update(id, at, func(n *domain.Notification) { n.Active = false })
}

func (r *memRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && n.Active && !n.Read {
			count++
		}
	}
	return count, nil
}

type publishCall struct {
	room    string
	event   string
	payload any
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, room, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{room: room, event: event, payload: payload})
	return p.err
}

type groupFinderFunc func(ctx context.Context, groupID string) (*domain.GroupRecipients, error)

func (f groupFinderFunc) FindRecipients(ctx context.Context, groupID string) (*domain.GroupRecipients, error) {
	return f(ctx, groupID)
}
