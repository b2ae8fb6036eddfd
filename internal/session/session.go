// Package session keeps the signed-in identity. It is Unauthenticated when no
// user is held and Authenticated otherwise; login and logout only change that
// after the remote call succeeds.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/persist"
	"github.com/patric-chuzhbe/dogmatch/internal/user"
	"github.com/patric-chuzhbe/dogmatch/internal/validation"
)

const (
	// UserKey holds the serialized user.
	UserKey = "user"

	// CredentialsKey holds the session cookies when a credential jar is set.
	CredentialsKey = "credentials"
)

type authenticator interface {
	Login(ctx context.Context, name, email string) error
	Logout(ctx context.Context) error
}

// CredentialJar is the part of the API client that owns the session cookie.
type CredentialJar interface {
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
}

type keyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type credential struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// State is a snapshot of the store.
type State struct {
	User *user.User
	Err  string
}

// Store holds at most one user.
type Store struct {
	mu          sync.RWMutex
	api         authenticator
	users       *persist.Mirror[user.User]
	credentials *persist.Mirror[[]credential]
	jar         CredentialJar
	usr         *user.User
	lastErr     string
	log         *zap.SugaredLogger
}

type initOptions struct {
	jar CredentialJar
}

// InitOption configures a Store.
type InitOption func(*initOptions)

// WithCredentialJar mirrors the session cookies into storage next to the
// user, so a new process start stays signed in.
func WithCredentialJar(jar CredentialJar) InitOption {
	return func(options *initOptions) {
		options.jar = jar
	}
}

// New builds the store and rehydrates it from db. A stored user that cannot
// be decoded leaves the store unauthenticated.
func New(ctx context.Context, api authenticator, db keyValueStore, opts ...InitOption) (*Store, error) {
	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}

	store := &Store{
		api:         api,
		users:       persist.New[user.User](db, UserKey),
		credentials: persist.New[[]credential](db, CredentialsKey),
		jar:         options.jar,
		log:         logger.Named("session"),
	}

	usr, found, err := store.users.Load(ctx)
	switch {
	case errors.Is(err, persist.ErrCorrupt):
		store.log.Warnw("ignoring unreadable persisted user", zap.Error(err))
	case err != nil:
		return nil, err
	case found && usr.Name != "" && usr.Email != "":
		store.usr = &usr
	}

	if store.jar != nil && store.usr != nil {
		if err := store.restoreCredentials(ctx); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (s *Store) restoreCredentials(ctx context.Context) error {
	stored, found, err := s.credentials.Load(ctx)
	if errors.Is(err, persist.ErrCorrupt) {
		s.log.Warnw("ignoring unreadable persisted credentials", zap.Error(err))
		return nil
	}
	if err != nil || !found {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(cookies)

	return nil
}

// Login validates the form, signs in remotely and persists the identity.
// On any failure the state is left untouched and the error is returned.
func (s *Store) Login(ctx context.Context, name, email string) error {
	usr, err := validation.Login(name, email)
	if err != nil {
		s.fail(err)
		return err
	}

	if err := s.api.Login(ctx, usr.Name, usr.Email); err != nil {
		s.log.Infow("login failed", "email", usr.Email, zap.Error(err))
		s.fail(err)
		return err
	}

	// Credentials go first: a stored user is what marks the next start as
	// signed in, so it must never be written without its cookie.
	if s.jar != nil {
		if err := s.saveCredentials(ctx); err != nil {
			s.fail(err)
			return err
		}
	}
	if err := s.users.Save(ctx, *usr); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.usr = usr
	s.lastErr = ""

	return nil
}

func (s *Store) saveCredentials(ctx context.Context) error {
	cookies := s.jar.Cookies()
	stored := make([]credential, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, credential{Name: c.Name, Value: c.Value})
	}

	return s.credentials.Save(ctx, stored)
}

// Logout signs out remotely and then forgets the identity. A failed remote
// call keeps the session as it was.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Infow("logout failed", zap.Error(err))
		s.fail(err)
		return err
	}

	if err := s.users.Remove(ctx); err != nil {
		s.fail(err)
		return err
	}
	if s.jar != nil {
		if err := s.credentials.Remove(ctx); err != nil {
			s.fail(err)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.usr = nil
	s.lastErr = ""

	return nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err.Error()
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.usr == nil {
		return nil
	}
	usr := *s.usr
	return &usr
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usr != nil
}

// State returns the signed-in user and the last error message.
func (s *Store) State() State {
	return State{User: s.User(), Err: s.lastError()}
}

func (s *Store) lastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
