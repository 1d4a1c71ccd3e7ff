package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"go.uber.org/zap"
)

// UserRepository stores accounts under user_<email>. A nationalId_<id> key
// reserves each national ID so two accounts can never share one.
type UserRepository struct {
	store store.Store
	log   *zap.Logger
}

func userKey(email string) string {
	return prefixUser + strings.ToLower(email)
}

func nationalIDKey(id string) string {
	return prefixNationalID + strings.ToUpper(id)
}

var errTaken = errors.New("taken")

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	nidKey := nationalIDKey(u.NationalID)
	err := r.store.Update(ctx, nidKey, func(_ []byte, exists bool) ([]byte, error) {
		if exists {
			return nil, errTaken
		}
		return json.Marshal(u.Email)
	})
	if errors.Is(err, errTaken) {
		return domain.ErrNationalIDTaken
	}
	if err != nil {
		return fmt.Errorf("reserving national ID: %w", err)
	}

	err = store.UpdateJSON(ctx, r.store, userKey(u.Email), func(v *domain.User, exists bool) error {
		if exists {
			return errTaken
		}
		*v = *u
		return nil
	})
	if err == nil {
		return nil
	}

	if rerr := r.store.Delete(ctx, nidKey); rerr != nil {
		r.log.Error("failed to release national ID reservation", zap.Error(rerr))
	}
	if errors.Is(err, errTaken) {
		return domain.ErrEmailTaken
	}
	return fmt.Errorf("writing user: %w", err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := store.GetJSON[domain.User](ctx, r.store, userKey(email))
	if store.IsAbsent(err) {
		if errors.Is(err, store.ErrCorrupt) {
			r.log.Warn("stored user is unreadable", zap.String("email", email), zap.Error(err))
		}
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies fn to the stored user atomically.
func (r *UserRepository) Update(ctx context.Context, email string, fn func(u *domain.User) error) (*domain.User, error) {
	var out domain.User
	err := store.UpdateJSON(ctx, r.store, userKey(email), func(v *domain.User, exists bool) error {
		if !exists {
			return domain.ErrUserNotFound
		}
		if err := fn(v); err != nil {
			return err
		}
		out = *v
		return nil
	})
	if errors.Is(err, store.ErrCorrupt) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every readable account in key order.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	keys, err := r.store.Keys(ctx, prefixUser)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	out := make([]*domain.User, 0, len(keys))
	for _, k := range keys {
		u, err := store.GetJSON[domain.User](ctx, r.store, k)
		if store.IsAbsent(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, nil
}

// SessionRepository holds the per-session login marker and health ID.
type SessionRepository struct {
	store store.Store
}

// CurrentUser returns domain.ErrAnonymous when nobody is logged in.
func (r *SessionRepository) CurrentUser(ctx context.Context) (*domain.SessionMarker, error) {
	m, err := store.GetJSON[domain.SessionMarker](ctx, r.store, keyCurrentUser)
	if store.IsAbsent(err) {
		return nil, domain.ErrAnonymous
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SessionRepository) SetCurrentUser(ctx context.Context, m *domain.SessionMarker) error {
	return store.PutJSON(ctx, r.store, keyCurrentUser, m)
}

func (r *SessionRepository) ClearCurrentUser(ctx context.Context) error {
	return r.store.Delete(ctx, keyCurrentUser)
}

func (r *SessionRepository) SetHealthID(ctx context.Context, id string) error {
	return store.PutJSON(ctx, r.store, keyHealthID, id)
}

func (r *SessionRepository) HealthID(ctx context.Context) (string, error) {
	id, err := store.GetJSON[string](ctx, r.store, keyHealthID)
	if store.IsAbsent(err) {
		return "", nil
	}
	return id, err
}
