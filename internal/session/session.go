package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/core/user"
)

// Session is the client's view of who is logged in. A zero Session means logged out.
type Session struct {
	User        *user.User
	AccessToken string
}

func (s Session) HasUser() bool {
	return s.User != nil
}

func (s Session) HasToken() bool {
	return s.AccessToken != ""
}

// Authenticated reports whether both the user and the token are present.
func (s Session) Authenticated() bool {
	return s.HasUser() && s.HasToken()
}

func (s Session) Role() (user.Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// ExpiresAt decodes the exp claim of the access token without verifying the
// signature. It is informational; the gateway relies on 401 responses.
func (s Session) ExpiresAt() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s Session) clone() Session {
	out := Session{AccessToken: s.AccessToken}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

func (s Session) userID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Store holds the current session. All mutations are visible to every reader
// as soon as the mutating call returns.
type Store struct {
	mu          sync.RWMutex
	// writeMu orders each mutation together with its write-through, so the
	// persisted snapshot is always the last committed one.
	writeMu     sync.Mutex
	current     Session
	persister   Persister
	autoPersist bool
	bus         *events.EventBus
	logger      *slog.Logger
}

type Option func(*Store)

// WithPersister attaches snapshot storage. With autoPersist every mutation is
// written through; otherwise only Save writes.
func WithPersister(p Persister, autoPersist bool) Option {
	return func(s *Store) {
		s.persister = p
		s.autoPersist = autoPersist
	}
}

func WithEventBus(bus *events.EventBus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// AccessToken is a shortcut for Get().AccessToken.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

func (s *Store) Set(ctx context.Context, u user.User, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" || u.ID == "" {
		return internal.ErrInvalidSnapshot
	}

	next := Session{User: &u, AccessToken: accessToken}
	s.commit(ctx, next.clone(), events.SessionSet)
	return nil
}

// UpdateAccessToken replaces the token and leaves the user untouched. It fails
// when no user is present, since a token alone is not a valid session.
func (s *Store) UpdateAccessToken(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return internal.NewValidationError("access token is required", internal.ErrCodeInvalidSession)
	}

	s.writeMu.Lock()
	s.mu.Lock()
	if s.current.User == nil {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return internal.ErrNotLoggedIn
	}
	s.current.AccessToken = accessToken
	committed := s.current.clone()
	s.mu.Unlock()
	s.persist(ctx, committed)
	s.writeMu.Unlock()

	s.publish(ctx, events.SessionTokenRefreshed, committed.userID())
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.writeMu.Lock()
	s.mu.Lock()
	previous := s.current.userID()
	s.current = Session{}
	s.mu.Unlock()
	s.persist(ctx, Session{})
	s.writeMu.Unlock()

	s.publish(ctx, events.SessionCleared, previous)
}

// commit swaps in next and writes it through. Observers run after the write
// lock is released so they may call back into the store.
func (s *Store) commit(ctx context.Context, next Session, reason events.SessionChangeReason) {
	s.writeMu.Lock()
	s.mu.Lock()
	s.current = next
	committed := s.current.clone()
	s.mu.Unlock()
	s.persist(ctx, committed)
	s.writeMu.Unlock()

	s.publish(ctx, reason, committed.userID())
}

func (s *Store) persist(ctx context.Context, snapshot Session) {
	if s.persister == nil || !s.autoPersist {
		return
	}
	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.logger.Warn("session: write-through persist failed", "error", err)
	}
}

func (s *Store) publish(ctx context.Context, reason events.SessionChangeReason, userID string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, events.NewSessionChangedEvent(reason, userID)); err != nil {
		s.logger.Warn("session: change observer failed", "reason", reason, "error", err)
	}
}

// Load restores the persisted snapshot. A snapshot that carries only one of
// user and token is discarded and the stored copy cleared.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	restored, err := s.restore(ctx)
	if err != nil {
		return err
	}
	if restored != "" {
		s.publish(ctx, events.SessionRestored, restored)
	}
	return nil
}

// restore loads the snapshot under the write lock and returns the user id it
// restored, if any.
func (s *Store) restore(ctx context.Context) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot, err := s.persister.Load(ctx)
	if err != nil {
		return "", internal.NewInternalError("failed to load session", err)
	}

	switch {
	case snapshot.Authenticated():
		s.mu.Lock()
		s.current = snapshot.clone()
		s.mu.Unlock()
		s.logger.Debug("session: restored", "user_id", snapshot.userID())
		return snapshot.userID(), nil
	case snapshot.HasUser() || snapshot.HasToken():
		s.logger.Warn("session: discarding partial snapshot",
			"has_user", snapshot.HasUser(),
			"has_token", snapshot.HasToken())
		if err := s.persister.Save(ctx, Session{}); err != nil {
			return "", internal.NewInternalError("failed to discard partial session", err)
		}
	}
	return "", nil
}

// Save writes the current snapshot regardless of the write-through setting.
func (s *Store) Save(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persister.Save(ctx, s.Get()); err != nil {
		return internal.NewInternalError("failed to save session", err)
	}
	return nil
}
