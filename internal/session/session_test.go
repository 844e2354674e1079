package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/model"
	"nconnect-cli/internal/state"
)

func testController(t *testing.T, handler http.HandlerFunc) (*Controller, *api.Client, state.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, 5*time.Second, nil)
	store := state.Store{Dir: t.TempDir()}
	return NewController(client, store, nil), client, store
}

func TestLoginThenVerify(t *testing.T) {
	ctrl, client, store := testController(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.EndpointLogin:
			w.Write([]byte(`{"key":"tok-1"}`))
		case api.EndpointUserStatus:
			assert.Equal(t, "Token tok-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"id":7,"username":"amara","is_superuser":false}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	gen, err := ctrl.Login(ctx, "amara", "pw")
	require.NoError(t, err)
	assert.Equal(t, Verifying, ctrl.Phase())

	st, err := client.UserStatus(ctx)
	require.NoError(t, err)
	outcome := ctrl.FinishVerify(ctx, gen, st, nil)

	assert.Equal(t, VerifyOK, outcome)
	assert.Equal(t, Active, ctrl.Phase())
	assert.Equal(t, "amara", ctrl.User().Username)

	sess, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "amara", sess.Username)
}

func TestFailedVerifyForcesLogout(t *testing.T) {
	ctrl, client, store := testController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid token."}`))
	})
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, state.Session{Token: "stale", Username: "amara"}))
	gen, ok := ctrl.Resume(ctx)
	require.True(t, ok)
	assert.Equal(t, Verifying, ctrl.Phase())

	st, err := client.UserStatus(ctx)
	outcome := ctrl.FinishVerify(ctx, gen, st, err)

	assert.Equal(t, VerifyFailed, outcome)
	assert.Equal(t, SignedOut, ctrl.Phase())
	assert.Empty(t, client.Token())

	sess, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestLogoutDiscardsInFlightVerification(t *testing.T) {
	ctrl, _, store := testController(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, state.Session{Token: "tok", Username: "amara"}))
	gen, ok := ctrl.Resume(ctx)
	require.True(t, ok)

	// User signs out while the status round-trip is still in flight.
	ctrl.Logout(ctx)
	assert.Equal(t, SignedOut, ctrl.Phase())

	// The late completion must not resurrect the session.
	outcome := ctrl.FinishVerify(ctx, gen, model.UserStatus{ID: 7, Username: "amara"}, nil)
	assert.Equal(t, VerifyStale, outcome)
	assert.Equal(t, SignedOut, ctrl.Phase())
	assert.Empty(t, ctrl.User().Username)
}

func TestResumeWithoutStoredToken(t *testing.T) {
	ctrl, _, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, ok := ctrl.Resume(context.Background())
	assert.False(t, ok)
	assert.Equal(t, SignedOut, ctrl.Phase())
}
