package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"nconnect-cli/internal/model"
)

func TestCommitAppliesCurrentGeneration(t *testing.T) {
	tr := NewTracker(nil)

	gen := tr.Begin(Bills)
	assert.True(t, tr.Loading(Bills))

	ok := tr.Commit(Bills, gen, Update{Apply: func(l *Lists) {
		l.Bills = []model.Bill{{ID: 1, Amount: "100"}}
	}})

	assert.True(t, ok)
	assert.False(t, tr.Loading(Bills))
	assert.Len(t, tr.Data.Bills, 1)
}

func TestStaleGenerationIsDropped(t *testing.T) {
	tr := NewTracker(nil)

	old := tr.Begin(Bills)
	fresh := tr.Begin(Bills)

	// The superseded refresh lands late; nothing changes.
	ok := tr.Commit(Bills, old, Update{Apply: func(l *Lists) {
		l.Bills = []model.Bill{{ID: 99}}
	}})
	assert.False(t, ok)
	assert.Empty(t, tr.Data.Bills)
	assert.True(t, tr.Loading(Bills))

	ok = tr.Commit(Bills, fresh, Update{Apply: func(l *Lists) {
		l.Bills = []model.Bill{{ID: 1}}
	}})
	assert.True(t, ok)
	assert.Equal(t, 1, tr.Data.Bills[0].ID)
}

func TestFailedRefreshKeepsPreviousData(t *testing.T) {
	tr := NewTracker(nil)

	gen := tr.Begin(Complaints)
	tr.Commit(Complaints, gen, Update{Apply: func(l *Lists) {
		l.Complaints = []model.Complaint{{ID: 1, Title: "leak"}}
	}})

	gen = tr.Begin(Complaints)
	ok := tr.Commit(Complaints, gen, Update{Err: errors.New("connection refused")})

	assert.False(t, ok)
	assert.False(t, tr.Loading(Complaints))
	assert.Len(t, tr.Data.Complaints, 1, "stale data stays on screen")
}

func TestInvalidateAllSupersedesInFlight(t *testing.T) {
	tr := NewTracker(nil)

	gen := tr.Begin(Notifications)
	tr.InvalidateAll()

	ok := tr.Commit(Notifications, gen, Update{Apply: func(l *Lists) {
		l.Notifications = []model.Notification{{ID: 1}}
	}})
	assert.False(t, ok)
	assert.Empty(t, tr.Data.Notifications)
	assert.False(t, tr.Loading(Notifications))
}
