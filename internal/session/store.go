// Package session owns the authentication identity: who is acting, which
// credential authorizes requests, and the initialization/refresh lifecycle
// that bridges anonymous, registered, and telegram-linked users.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/snapcal/snapcal-cli/internal/api"
	"github.com/snapcal/snapcal-cli/internal/energy"
	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/storage"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the slice of the backend client the store depends on.
type AuthAPI interface {
	CreateAnonymous(ctx context.Context) (model.AuthSession, error)
	Login(ctx context.Context, email, password string) (model.AuthSession, error)
	Register(ctx context.Context, email, password, name string) (model.AuthSession, error)
	ConvertAnonymous(ctx context.Context, credential, email, password, name string) (model.AuthSession, error)
	CurrentUser(ctx context.Context, credential string) (model.User, error)
	UpdateSettings(ctx context.Context, credential string, fields map[string]any) (model.User, error)
	Refresh(ctx context.Context, credential string) (model.AuthSession, error)
	TelegramAuth(ctx context.Context, initData string) (model.AuthSession, error)
	LinkTelegram(ctx context.Context, credential, initData string) (model.AuthSession, error)
}

// StateStore persists the session snapshot across restarts.
type StateStore interface {
	LoadSession() (storage.SessionSnapshot, bool, error)
	SaveSession(storage.SessionSnapshot) error
}

// Store is the single source of truth for the acting identity. All state
// lives behind one mutex; readers get snapshots, never live references.
type Store struct {
	api     AuthAPI
	storage StateStore
	log     zerolog.Logger

	// embeddedInitData returns the host container's signed identity payload,
	// or "" when not running embedded.
	embeddedInitData func() string

	mu          sync.Mutex
	user        *model.User
	credential  string
	loading     bool
	initialized bool
	embedded    bool
}

func NewStore(authAPI AuthAPI, state StateStore, embeddedInitData func() string, log zerolog.Logger) *Store {
	if embeddedInitData == nil {
		embeddedInitData = func() string { return "" }
	}
	return &Store{
		api:              authAPI,
		storage:          state,
		embeddedInitData: embeddedInitData,
		log:              log,
		loading:          true,
	}
}

// Snapshot accessors. Each returns the current value; callers must re-read
// rather than hold on to them across suspension points.

func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// EmbeddedClient reports whether a host messaging container supplied an
// identity payload this run.
func (s *Store) EmbeddedClient() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.embedded
}

// adopt replaces credential+user from an auth response and persists the new
// snapshot. The state transition is pure; persistence failures are logged,
// never propagated.
func (s *Store) adopt(sess model.AuthSession) {
	s.mu.Lock()
	user := sess.User
	s.credential = sess.AccessToken
	s.user = &user
	s.mu.Unlock()
	s.persist()
}

func (s *Store) setUser(user model.User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.persist()
}

func (s *Store) clear() {
	s.mu.Lock()
	s.credential = ""
	s.user = nil
	s.mu.Unlock()
	s.persist()
}

func (s *Store) persist() {
	s.mu.Lock()
	snap := storage.SessionSnapshot{Credential: s.credential, User: s.user.Clone()}
	s.mu.Unlock()
	if err := s.storage.SaveSession(snap); err != nil {
		s.log.Warn().Err(err).Msg("persist session")
	}
}

// Initialize establishes the session at startup. It tolerates corrupt
// persisted state and transient outages, and always finishes with
// loading=false, initialized=true. It never returns an error: the only
// failure it acts on is an explicit credential rejection, which clears the
// session. Deciding whether to then provision an anonymous identity belongs
// to the caller.
func (s *Store) Initialize(ctx context.Context) {
	initData := s.embeddedInitData()

	s.mu.Lock()
	s.loading = true
	s.embedded = initData != ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.initialized = true
		s.mu.Unlock()
	}()

	// Embedded host sign-in short-circuits everything else; its failure
	// falls through to the persisted-credential path.
	if initData != "" {
		sess, err := s.api.TelegramAuth(ctx, initData)
		if err == nil {
			s.adopt(sess)
			return
		}
		s.log.Warn().Err(err).Msg("embedded sign-in failed")
	}

	snap, ok, err := s.storage.LoadSession()
	if err != nil {
		s.log.Warn().Err(err).Msg("load persisted session")
	}
	if !ok || snap.Credential == "" {
		return
	}

	// Tentatively adopt the persisted pair so a transient outage below
	// leaves the session exactly as stored.
	s.mu.Lock()
	s.credential = snap.Credential
	s.user = snap.User
	s.mu.Unlock()

	if expiry, found := CredentialExpiry(snap.Credential); found {
		s.log.Debug().Time("expires", expiry).Msg("persisted credential")
	}

	sess, err := s.api.Refresh(ctx, snap.Credential)
	if err == nil {
		s.adopt(sess)
		return
	}
	s.log.Debug().Err(err).Msg("refresh failed, validating existing credential")

	user, err := s.api.CurrentUser(ctx, snap.Credential)
	if err == nil {
		s.setUser(user)
		return
	}
	if api.IsAuthRejection(err) {
		s.log.Info().Msg("credential rejected, clearing session")
		s.clear()
		return
	}
	// Could not verify right now; a network blip must not log the user out.
	s.log.Warn().Err(err).Msg("could not verify session, keeping persisted state")
}

// ProvisionAnonymous creates a device-local identity. Callers invoke it when
// Initialize finishes unauthenticated and the current command needs one.
func (s *Store) ProvisionAnonymous(ctx context.Context) error {
	sess, err := s.api.CreateAnonymous(ctx)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

func (s *Store) Register(ctx context.Context, email, password, name string) error {
	sess, err := s.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

// ConvertAnonymous upgrades the current identity in place; the server keeps
// the row and its history.
func (s *Store) ConvertAnonymous(ctx context.Context, email, password, name string) error {
	cred := s.Credential()
	if cred == "" {
		return ErrNotAuthenticated
	}
	sess, err := s.api.ConvertAnonymous(ctx, cred, email, password, name)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

func (s *Store) LoginWithTelegram(ctx context.Context, initData string) error {
	sess, err := s.api.TelegramAuth(ctx, initData)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

func (s *Store) LinkTelegram(ctx context.Context, initData string) error {
	cred := s.Credential()
	if cred == "" {
		return ErrNotAuthenticated
	}
	sess, err := s.api.LinkTelegram(ctx, cred, initData)
	if err != nil {
		return err
	}
	s.adopt(sess)
	return nil
}

// Logout forgets the identity locally. No server call: re-initialization
// will provision a fresh anonymous identity.
func (s *Store) Logout() {
	s.clear()
}

// UpdateProfile applies the partial settings optimistically, recomputing
// BMR/TDEE when all body metrics are known, then replaces the local user
// with the server's authoritative response. On failure the previous user is
// restored exactly.
func (s *Store) UpdateProfile(ctx context.Context, update model.ProfileUpdate) error {
	cred := s.Credential()
	if cred == "" {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	prev := s.user
	if prev != nil {
		predicted := update.ApplyTo(prev)
		energy.Derive(predicted)
		s.user = predicted
	}
	s.mu.Unlock()

	user, err := s.api.UpdateSettings(ctx, cred, update.BackendFields())
	if err != nil {
		s.mu.Lock()
		s.user = prev
		s.mu.Unlock()
		return err
	}
	s.setUser(user)
	return nil
}
