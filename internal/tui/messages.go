package tui

import (
	"nconnect-cli/internal/feed"
	"nconnect-cli/internal/model"
)

// sessionVerifiedMsg completes a login or resume: the status round-trip
// issued under gen finished.
type sessionVerifiedMsg struct {
	gen int
	st  model.UserStatus
	err error
}

// loginFailedMsg is a credential rejection before any token was issued.
type loginFailedMsg struct{ err error }

// registerDoneMsg completes an account registration attempt.
type registerDoneMsg struct{ err error }

// listFetchedMsg is one resource refresh completion, tagged with the
// generation it was issued under.
type listFetchedMsg struct {
	resource feed.Resource
	gen      int
	update   feed.Update
}

// actionDoneMsg is a completed write. On success the named resources are
// refetched; on failure the open form keeps its values and shows the detail.
type actionDoneMsg struct {
	err     error
	note    string
	refresh []feed.Resource
}

// forumCommentsMsg delivers the comments of one forum post for the open
// detail modal.
type forumCommentsMsg struct {
	postID string
	items  []model.ForumComment
	err    error
}

// loggedOutMsg signals that the controller finished tearing the session down.
type loggedOutMsg struct{}

// pollTickMsg is stamped with the console that armed the timer. A tick from a
// torn-down console is dropped instead of re-armed, so a logout/login cycle
// never accumulates timer chains.
type pollTickMsg struct {
	owner *consoleModel
}
