package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func testClient(ts *httptest.Server) *Client {
	c := New(ts.URL, zerolog.Nop())
	c.HTTPClient = ts.Client()
	return c
}

func TestErrorUsesServerDetailMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Email already registered"}`))
	}))
	defer ts.Close()

	_, err := testClient(ts).Login(context.Background(), "a@b.c", "pw")
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.Message != "Email already registered" {
		t.Fatalf("expected detail message, got %q", apiErr.Message)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.Status)
	}
}

func TestErrorFallsBackToGenericMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>gateway exploded</html>"))
	}))
	defer ts.Close()

	_, err := testClient(ts).CurrentUser(context.Background(), "tok")
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.Message != msgServerError {
		t.Fatalf("expected generic message, got %q", apiErr.Message)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apiErr.Status)
	}
}

func TestErrorEmptyDetailFallsBack(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "   "}`))
	}))
	defer ts.Close()

	_, err := testClient(ts).CurrentUser(context.Background(), "tok")
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.Message != msgServerError {
		t.Fatalf("blank detail must fall back, got %q", apiErr.Message)
	}
}

func TestUnreachableServerMapsToFixedMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // now nothing listens

	c := New(ts.URL, zerolog.Nop())
	_, err := c.CurrentUser(context.Background(), "tok")
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.Status != 0 {
		t.Fatalf("no response must carry status 0, got %d", apiErr.Status)
	}
	if apiErr.Message != msgUnreachable {
		t.Fatalf("expected fixed unreachable message, got %q", apiErr.Message)
	}
	if !IsUnreachable(err) {
		t.Fatalf("IsUnreachable should report true")
	}
	if IsAuthRejection(err) {
		t.Fatalf("unreachable must not look like an auth rejection")
	}
}

func TestAuthRejectionClassification(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		if !IsAuthRejection(&Error{Message: "no", Status: status}) {
			t.Fatalf("status %d should be an auth rejection", status)
		}
	}
	for _, status := range []int{0, http.StatusNotFound, http.StatusInternalServerError} {
		if IsAuthRejection(&Error{Message: "no", Status: status}) {
			t.Fatalf("status %d should not be an auth rejection", status)
		}
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": `))
	}))
	defer ts.Close()

	_, err := testClient(ts).Login(context.Background(), "a@b.c", "pw")
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusOK {
		t.Fatalf("decode failures keep the response status, got %d", apiErr.Status)
	}
}

func TestCredentialSentAsBearerHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"id": "u1", "user_type": "anonymous"}`))
	}))
	defer ts.Close()

	if _, err := testClient(ts).CurrentUser(context.Background(), "tok-abc"); err != nil {
		t.Fatalf("current user: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoCredentialOmitsAuthorizationHeader(t *testing.T) {
	t.Parallel()

	var sawHeader bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"activities": []}`))
	}))
	defer ts.Close()

	if _, err := testClient(ts).ActivityCatalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if sawHeader {
		t.Fatalf("public calls must not send an Authorization header")
	}
}

func TestLoginParsesAuthSession(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "access_token": "tok-1",
  "token_type": "bearer",
  "user": {"id": "u1", "user_type": "registered", "email": "a@b.c", "daily_calorie_goal": 2000}
}`))
	}))
	defer ts.Close()

	sess, err := testClient(ts).Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.AccessToken != "tok-1" {
		t.Fatalf("token mismatch: %q", sess.AccessToken)
	}
	if sess.User.ID != "u1" || !sess.User.Registered() {
		t.Fatalf("user mismatch: %+v", sess.User)
	}
	if sess.User.DailyCalorieGoal != 2000 {
		t.Fatalf("goal mismatch: %d", sess.User.DailyCalorieGoal)
	}
}

func TestDeleteMealEscapesID(t *testing.T) {
	t.Parallel()

	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	if err := testClient(ts).DeleteMeal(context.Background(), "tok", "id with space"); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	if gotPath != "/meals/id%20with%20space" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCheckAdminNeverFails(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "admin only"}`))
	}))
	defer ts.Close()

	if testClient(ts).CheckAdmin(context.Background(), "tok") {
		t.Fatalf("403 must read as not-admin")
	}

	down := httptest.NewServer(nil)
	down.Close()
	if New(down.URL, zerolog.Nop()).CheckAdmin(context.Background(), "tok") {
		t.Fatalf("unreachable must read as not-admin")
	}
}
