package session_test

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/snapcal/snapcal-cli/internal/api"
	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/session"
	"github.com/snapcal/snapcal-cli/internal/storage"
)

var errUnreachable = &api.Error{Message: "could not reach the server: check your connection"}

// fakeAuthAPI implements session.AuthAPI with per-call hooks. Unset hooks
// fail the test if called.
type fakeAuthAPI struct {
	t *testing.T

	createAnonymous func(ctx context.Context) (model.AuthSession, error)
	login           func(ctx context.Context, email, password string) (model.AuthSession, error)
	register        func(ctx context.Context, email, password, name string) (model.AuthSession, error)
	convert         func(ctx context.Context, credential, email, password, name string) (model.AuthSession, error)
	currentUser     func(ctx context.Context, credential string) (model.User, error)
	updateSettings  func(ctx context.Context, credential string, fields map[string]any) (model.User, error)
	refresh         func(ctx context.Context, credential string) (model.AuthSession, error)
	telegramAuth    func(ctx context.Context, initData string) (model.AuthSession, error)
	linkTelegram    func(ctx context.Context, credential, initData string) (model.AuthSession, error)
}

func (f *fakeAuthAPI) CreateAnonymous(ctx context.Context) (model.AuthSession, error) {
	if f.createAnonymous == nil {
		f.t.Fatalf("unexpected CreateAnonymous call")
	}
	return f.createAnonymous(ctx)
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (model.AuthSession, error) {
	if f.login == nil {
		f.t.Fatalf("unexpected Login call")
	}
	return f.login(ctx, email, password)
}

func (f *fakeAuthAPI) Register(ctx context.Context, email, password, name string) (model.AuthSession, error) {
	if f.register == nil {
		f.t.Fatalf("unexpected Register call")
	}
	return f.register(ctx, email, password, name)
}

func (f *fakeAuthAPI) ConvertAnonymous(ctx context.Context, credential, email, password, name string) (model.AuthSession, error) {
	if f.convert == nil {
		f.t.Fatalf("unexpected ConvertAnonymous call")
	}
	return f.convert(ctx, credential, email, password, name)
}

func (f *fakeAuthAPI) CurrentUser(ctx context.Context, credential string) (model.User, error) {
	if f.currentUser == nil {
		f.t.Fatalf("unexpected CurrentUser call")
	}
	return f.currentUser(ctx, credential)
}

func (f *fakeAuthAPI) UpdateSettings(ctx context.Context, credential string, fields map[string]any) (model.User, error) {
	if f.updateSettings == nil {
		f.t.Fatalf("unexpected UpdateSettings call")
	}
	return f.updateSettings(ctx, credential, fields)
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, credential string) (model.AuthSession, error) {
	if f.refresh == nil {
		f.t.Fatalf("unexpected Refresh call")
	}
	return f.refresh(ctx, credential)
}

func (f *fakeAuthAPI) TelegramAuth(ctx context.Context, initData string) (model.AuthSession, error) {
	if f.telegramAuth == nil {
		f.t.Fatalf("unexpected TelegramAuth call")
	}
	return f.telegramAuth(ctx, initData)
}

func (f *fakeAuthAPI) LinkTelegram(ctx context.Context, credential, initData string) (model.AuthSession, error) {
	if f.linkTelegram == nil {
		f.t.Fatalf("unexpected LinkTelegram call")
	}
	return f.linkTelegram(ctx, credential, initData)
}

// memState is an in-memory session.StateStore.
type memState struct {
	snap  storage.SessionSnapshot
	has   bool
	saves int
	fail  error
}

func (m *memState) LoadSession() (storage.SessionSnapshot, bool, error) {
	return m.snap, m.has, nil
}

func (m *memState) SaveSession(snap storage.SessionSnapshot) error {
	if m.fail != nil {
		return m.fail
	}
	m.snap = snap
	m.has = true
	m.saves++
	return nil
}

func anonUser(id string) model.User {
	return model.User{ID: id, UserType: model.UserTypeAnonymous, DailyCalorieGoal: 2000}
}

func newTestStore(t *testing.T, fake *fakeAuthAPI, state *memState, initData string) *session.Store {
	t.Helper()
	fake.t = t
	return session.NewStore(fake, state, func() string { return initData }, zerolog.Nop())
}

func TestInitializeWithNoPersistedState(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, &fakeAuthAPI{}, &memState{}, "")

	store.Initialize(context.Background())

	if !store.Initialized() || store.Loading() {
		t.Fatalf("expected initialized and not loading")
	}
	if store.Authenticated() {
		t.Fatalf("expected no session; provisioning belongs to the caller")
	}
	if store.User() != nil {
		t.Fatalf("expected nil user")
	}
}

func TestInitializeRefreshesPersistedSession(t *testing.T) {
	t.Parallel()
	user := anonUser("u1")
	state := &memState{
		snap: storage.SessionSnapshot{Credential: "old-token", User: &user},
		has:  true,
	}
	fake := &fakeAuthAPI{
		refresh: func(ctx context.Context, credential string) (model.AuthSession, error) {
			if credential != "old-token" {
				t.Errorf("refresh got credential %q", credential)
			}
			return model.AuthSession{AccessToken: "new-token", User: anonUser("u1")}, nil
		},
	}
	store := newTestStore(t, fake, state, "")

	store.Initialize(context.Background())

	if store.Credential() != "new-token" {
		t.Fatalf("expected rotated credential, got %q", store.Credential())
	}
	if state.snap.Credential != "new-token" {
		t.Fatalf("rotation must be persisted, got %q", state.snap.Credential)
	}
}

func TestInitializeKeepsSessionWhenServerUnreachable(t *testing.T) {
	t.Parallel()
	user := anonUser("u1")
	state := &memState{
		snap: storage.SessionSnapshot{Credential: "old-token", User: &user},
		has:  true,
	}
	fake := &fakeAuthAPI{
		refresh: func(ctx context.Context, credential string) (model.AuthSession, error) {
			return model.AuthSession{}, errUnreachable
		},
		currentUser: func(ctx context.Context, credential string) (model.User, error) {
			return model.User{}, errUnreachable
		},
	}
	store := newTestStore(t, fake, state, "")

	store.Initialize(context.Background())

	if !store.Authenticated() || store.Credential() != "old-token" {
		t.Fatalf("a network blip must not log the user out")
	}
	u := store.User()
	if u == nil || u.ID != "u1" {
		t.Fatalf("persisted user should survive, got %+v", u)
	}
	if state.snap.Credential != "old-token" {
		t.Fatalf("persisted snapshot must be untouched")
	}
}

func TestInitializeClearsSessionOnExplicitRejection(t *testing.T) {
	t.Parallel()
	user := anonUser("u1")
	state := &memState{
		snap: storage.SessionSnapshot{Credential: "revoked", User: &user},
		has:  true,
	}
	fake := &fakeAuthAPI{
		refresh: func(ctx context.Context, credential string) (model.AuthSession, error) {
			return model.AuthSession{}, &api.Error{Message: "expired", Status: http.StatusUnauthorized}
		},
		currentUser: func(ctx context.Context, credential string) (model.User, error) {
			return model.User{}, &api.Error{Message: "expired", Status: http.StatusUnauthorized}
		},
	}
	store := newTestStore(t, fake, state, "")

	store.Initialize(context.Background())

	if store.Authenticated() {
		t.Fatalf("rejected credential must clear the session")
	}
	if state.snap.Credential != "" || state.snap.User != nil {
		t.Fatalf("cleared session must be persisted, got %+v", state.snap)
	}
	if !store.Initialized() {
		t.Fatalf("expected initialized")
	}
}

func TestInitializeFallsBackToCurrentUserWhenRefreshFails(t *testing.T) {
	t.Parallel()
	user := anonUser("u1")
	state := &memState{
		snap: storage.SessionSnapshot{Credential: "tok", User: &user},
		has:  true,
	}
	serverUser := anonUser("u1")
	serverUser.DailyCalorieGoal = 1800
	fake := &fakeAuthAPI{
		refresh: func(ctx context.Context, credential string) (model.AuthSession, error) {
			return model.AuthSession{}, &api.Error{Message: "no refresh", Status: http.StatusNotFound}
		},
		currentUser: func(ctx context.Context, credential string) (model.User, error) {
			return serverUser, nil
		},
	}
	store := newTestStore(t, fake, state, "")

	store.Initialize(context.Background())

	if store.Credential() != "tok" {
		t.Fatalf("credential should be kept, got %q", store.Credential())
	}
	u := store.User()
	if u == nil || u.DailyCalorieGoal != 1800 {
		t.Fatalf("expected server user adopted, got %+v", u)
	}
}

func TestInitializeEmbeddedSignInShortCircuits(t *testing.T) {
	t.Parallel()
	state := &memState{}
	fake := &fakeAuthAPI{
		telegramAuth: func(ctx context.Context, initData string) (model.AuthSession, error) {
			if initData != "payload" {
				t.Errorf("unexpected init data %q", initData)
			}
			u := model.User{ID: "t1", UserType: model.UserTypeTelegram}
			return model.AuthSession{AccessToken: "tg-token", User: u}, nil
		},
	}
	store := newTestStore(t, fake, state, "payload")

	store.Initialize(context.Background())

	if !store.EmbeddedClient() {
		t.Fatalf("expected embedded client")
	}
	if store.Credential() != "tg-token" {
		t.Fatalf("expected telegram session, got %q", store.Credential())
	}
}

func TestInitializeEmbeddedFailureFallsBackToPersisted(t *testing.T) {
	t.Parallel()
	user := anonUser("u1")
	state := &memState{
		snap: storage.SessionSnapshot{Credential: "tok", User: &user},
		has:  true,
	}
	fake := &fakeAuthAPI{
		telegramAuth: func(ctx context.Context, initData string) (model.AuthSession, error) {
			return model.AuthSession{}, errUnreachable
		},
		refresh: func(ctx context.Context, credential string) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "tok2", User: anonUser("u1")}, nil
		},
	}
	store := newTestStore(t, fake, state, "payload")

	store.Initialize(context.Background())

	if store.Credential() != "tok2" {
		t.Fatalf("expected persisted-path session, got %q", store.Credential())
	}
}

func TestProvisionAnonymousAdoptsAndPersists(t *testing.T) {
	t.Parallel()
	state := &memState{}
	fake := &fakeAuthAPI{
		createAnonymous: func(ctx context.Context) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "anon-tok", User: anonUser("a1")}, nil
		},
	}
	store := newTestStore(t, fake, state, "")
	store.Initialize(context.Background())

	if err := store.ProvisionAnonymous(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if store.Credential() != "anon-tok" {
		t.Fatalf("expected anonymous session")
	}
	if state.snap.Credential != "anon-tok" {
		t.Fatalf("anonymous session must be persisted")
	}
}

func TestConvertRequiresExistingCredential(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, &fakeAuthAPI{}, &memState{}, "")

	err := store.ConvertAnonymous(context.Background(), "a@b.c", "pw", "Sam")
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestConvertKeepsIdentityUpgrade(t *testing.T) {
	t.Parallel()
	state := &memState{}
	email := "a@b.c"
	fake := &fakeAuthAPI{
		createAnonymous: func(ctx context.Context) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "anon-tok", User: anonUser("a1")}, nil
		},
		convert: func(ctx context.Context, credential, em, pw, name string) (model.AuthSession, error) {
			if credential != "anon-tok" {
				t.Errorf("convert must send the anonymous credential, got %q", credential)
			}
			u := model.User{ID: "a1", UserType: model.UserTypeRegistered, Email: &email}
			return model.AuthSession{AccessToken: "reg-tok", User: u}, nil
		},
	}
	store := newTestStore(t, fake, state, "")
	if err := store.ProvisionAnonymous(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}

	if err := store.ConvertAnonymous(context.Background(), email, "pw", "Sam"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	u := store.User()
	if u == nil || u.ID != "a1" || !u.Registered() {
		t.Fatalf("conversion must keep the same user id, got %+v", u)
	}
}

func TestLogoutClearsLocalAndPersistedState(t *testing.T) {
	t.Parallel()
	state := &memState{}
	fake := &fakeAuthAPI{
		createAnonymous: func(ctx context.Context) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "tok", User: anonUser("a1")}, nil
		},
	}
	store := newTestStore(t, fake, state, "")
	if err := store.ProvisionAnonymous(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}

	store.Logout()

	if store.Authenticated() || store.User() != nil {
		t.Fatalf("logout must clear the session")
	}
	if state.snap.Credential != "" || state.snap.User != nil {
		t.Fatalf("logout must clear the persisted snapshot")
	}
}

func profileTestUser() model.User {
	weight, height, age := 70.0, 175.0, 30
	gender, level := "male", "moderate"
	bmr, tdee := 1649.0, 2556.0
	return model.User{
		ID:            "u1",
		UserType:      model.UserTypeRegistered,
		WeightKg:      &weight,
		HeightCm:      &height,
		Age:           &age,
		Gender:        &gender,
		ActivityLevel: &level,
		BMR:           &bmr,
		TDEE:          &tdee,
	}
}

func TestUpdateProfileOptimisticRecomputeThenServerOverwrite(t *testing.T) {
	t.Parallel()
	state := &memState{}
	var store *session.Store

	serverTDEE := 2700.0
	fake := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "tok", User: profileTestUser()}, nil
		},
		updateSettings: func(ctx context.Context, credential string, fields map[string]any) (model.User, error) {
			if got, ok := fields["weight_kg"]; !ok || got != 80.0 {
				t.Errorf("expected weight_kg=80 in payload, got %v", fields)
			}
			// Mid-flight, the local user must already show the predicted
			// recompute for the new weight: (10*80+6.25*175-150+5)*1.55.
			mid := store.User()
			if mid == nil || mid.TDEE == nil {
				t.Errorf("expected optimistic user mid-flight")
			} else if *mid.TDEE != 2711 {
				t.Errorf("expected predicted TDEE 2711, got %.1f", *mid.TDEE)
			}
			u := profileTestUser()
			newWeight := 80.0
			u.WeightKg = &newWeight
			u.TDEE = &serverTDEE
			return u, nil
		},
	}
	store = newTestStore(t, fake, state, "")
	if err := store.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	newWeight := 80.0
	if err := store.UpdateProfile(context.Background(), model.ProfileUpdate{WeightKg: &newWeight}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	u := store.User()
	if u == nil || u.TDEE == nil || *u.TDEE != serverTDEE {
		t.Fatalf("server response must win, got %+v", u)
	}
}

func TestUpdateProfileRestoresUserOnFailure(t *testing.T) {
	t.Parallel()
	state := &memState{}
	fake := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "tok", User: profileTestUser()}, nil
		},
		updateSettings: func(ctx context.Context, credential string, fields map[string]any) (model.User, error) {
			return model.User{}, errUnreachable
		},
	}
	store := newTestStore(t, fake, state, "")
	if err := store.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	before := store.User()

	newWeight := 80.0
	err := store.UpdateProfile(context.Background(), model.ProfileUpdate{WeightKg: &newWeight})
	if !api.IsUnreachable(err) {
		t.Fatalf("expected unreachable error, got %v", err)
	}

	after := store.User()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed update must restore the previous user\nbefore: %+v\nafter: %+v", before, after)
	}
}

func TestPersistFailureDoesNotPropagate(t *testing.T) {
	t.Parallel()
	state := &memState{fail: errors.New("disk full")}
	fake := &fakeAuthAPI{
		createAnonymous: func(ctx context.Context) (model.AuthSession, error) {
			return model.AuthSession{AccessToken: "tok", User: anonUser("a1")}, nil
		},
	}
	store := newTestStore(t, fake, state, "")

	if err := store.ProvisionAnonymous(context.Background()); err != nil {
		t.Fatalf("persist failures must be silent, got %v", err)
	}
	if store.Credential() != "tok" {
		t.Fatalf("in-memory session must still be adopted")
	}
}
