package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	sess, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Empty(t, sess.Username)

	require.NoError(t, s.SaveSession(ctx, Session{Token: "tok-1", Username: "amara"}))

	sess, err = s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "amara", sess.Username)

	// Saving again overwrites.
	require.NoError(t, s.SaveSession(ctx, Session{Token: "tok-2", Username: "amara"}))
	sess, err = s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", sess.Token)
}

func TestClearSessionIdempotent(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	// Clearing a store that never existed is fine.
	require.NoError(t, s.ClearSession(ctx))

	require.NoError(t, s.SaveSession(ctx, Session{Token: "tok", Username: "amara"}))
	require.NoError(t, s.ClearSession(ctx))
	require.NoError(t, s.ClearSession(ctx))

	sess, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestResidentTabSurvivesSessionClear(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	assert.Empty(t, s.LoadResidentTab(ctx))

	require.NoError(t, s.SaveResidentTab(ctx, "bills"))
	require.NoError(t, s.SaveSession(ctx, Session{Token: "tok", Username: "amara"}))
	require.NoError(t, s.ClearSession(ctx))

	assert.Equal(t, "bills", s.LoadResidentTab(ctx))
}
