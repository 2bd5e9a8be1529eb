package service

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// stubProfiles is a ProfileRepository with a unique id and a unique email.
type stubProfiles struct {
	users     map[string]*domain.User
	queryErr  error
	getErr    error
	insertErr error
	updates   chan []domain.User
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{users: make(map[string]*domain.User)}
}

func (r *stubProfiles) Query(_ context.Context, filter ports.FieldFilter, limit int64) ([]domain.User, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var out []domain.User
	for _, u := range r.users {
		if filter.Field == "email" && u.Email == filter.Value {
			out = append(out, *u)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubProfiles) Get(_ context.Context, id string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return cloneUser(r.users[id]), nil
}

func (r *stubProfiles) Insert(_ context.Context, user *domain.User) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.users[user.ID]; ok {
		return domain.ErrUserExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubProfiles) Stream(ctx context.Context) (<-chan []domain.User, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	out := make(chan []domain.User)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-r.updates:
				if !ok {
					return
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// stubIdentity is an in-memory IdentityProvider that records its calls.
type stubIdentity struct {
	accounts  map[string]string // email -> password
	ids       map[string]string // email -> account id
	createErr error
	signInErr error
	resetErr  error
	deleteErr error

	createCalls int
	deleted     []string
	resets      []string
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{accounts: make(map[string]string), ids: make(map[string]string)}
}

func (p *stubIdentity) CreateAccount(_ context.Context, email, password string) (string, error) {
	p.createCalls++
	if p.createErr != nil {
		return "", p.createErr
	}
	if _, ok := p.accounts[email]; ok {
		return "", domain.ErrAccountExists
	}
	id := "acct-" + email
	p.accounts[email] = password
	p.ids[email] = id
	return id, nil
}

func (p *stubIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	if p.signInErr != nil {
		return "", p.signInErr
	}
	if pw, ok := p.accounts[email]; !ok || pw != password {
		return "", domain.ErrInvalidCredentials
	}
	return p.ids[email], nil
}

func (p *stubIdentity) SendPasswordReset(_ context.Context, email string) error {
	if p.resetErr != nil {
		return p.resetErr
	}
	if _, ok := p.accounts[email]; !ok {
		return domain.ErrAccountNotFound
	}
	p.resets = append(p.resets, email)
	return nil
}

func (p *stubIdentity) ConfirmPasswordReset(_ context.Context, token, _ string) error {
	if token != "valid-token" {
		return domain.ErrResetTokenInvalid
	}
	return nil
}

func (p *stubIdentity) DeleteAccount(_ context.Context, accountID string) error {
	p.deleted = append(p.deleted, accountID)
	if p.deleteErr != nil {
		return p.deleteErr
	}
	for email, id := range p.ids {
		if id == accountID {
			delete(p.ids, email)
			delete(p.accounts, email)
		}
	}
	return nil
}

// stubBackend is a SessionBackend over a map with injectable failures.
type stubBackend struct {
	mu      sync.Mutex
	data    map[string]map[string]string
	readErr error
	saveErr error
}

func newStubBackend() *stubBackend {
	return &stubBackend{data: make(map[string]map[string]string)}
}

func (b *stubBackend) ReplaceAll(_ context.Context, key string, fields map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.data[key] = maps.Clone(fields)
	return nil
}

func (b *stubBackend) GetAll(_ context.Context, key string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return nil, b.readErr
	}
	return maps.Clone(b.data[key]), nil
}

func (b *stubBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func (b *stubBackend) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.data))
}
