package tui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/model"
)

func ctrlS() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlS} }

func fillComplaintForm(c *consoleModel) {
	c.openForm("complaint.create")
	c.form.SetValue("title", "Water leak")
	c.form.SetValue("description", "kitchen ceiling")
	c.form.SetValue("flat_id", "3")
}

func TestFormSubmitsOnceWhileInFlight(t *testing.T) {
	c := testConsole(t, false)
	fillComplaintForm(c)

	cmd, _ := c.handleKey(ctrlS())
	require.NotNil(t, cmd)
	assert.True(t, c.form.submitting)

	// The open form takes no more input until the write reports back.
	again, _ := c.handleKey(ctrlS())
	assert.Nil(t, again, "a second submit on the same open form must not fire")
	c.handleKey(keyRunes("x"))
	assert.Equal(t, "Water leak", c.form.Value("title"))
}

func TestSubmitCommandUsesValueSnapshot(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		received <- r.FormValue("title")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := testConsole(t, false)
	c.client = api.New(srv.URL, time.Second, nil)
	fillComplaintForm(c)

	cmd, _ := c.handleKey(ctrlS())
	require.NotNil(t, cmd)

	// Edits after the submit must not leak into the request.
	c.form.fields[0].value = "tampered"

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Equal(t, "Water leak", <-received)
}

func TestPollTickFromTornDownConsoleIsDropped(t *testing.T) {
	old := testConsole(t, false)
	cur := testConsole(t, false)

	cmd, _ := cur.Update(pollTickMsg{owner: old})
	assert.Nil(t, cmd, "a tick armed by a previous console must not re-arm")

	cmd, _ = cur.Update(pollTickMsg{owner: cur})
	assert.NotNil(t, cmd)
}

func TestForumCommentsAttachToOpenDetail(t *testing.T) {
	c := testConsole(t, false)
	c.detailTitle = "Gate noise"
	c.detailBody = "post body"
	c.detailPostID = "p1"

	c.Update(forumCommentsMsg{postID: "p2", items: []model.ForumComment{{Content: "other thread"}}})
	assert.Equal(t, "post body", c.detailBody, "comments for another post are ignored")

	c.Update(forumCommentsMsg{postID: "p1", err: assert.AnError})
	assert.Equal(t, "post body", c.detailBody, "a failed fetch leaves the body alone")

	c.Update(forumCommentsMsg{postID: "p1", items: []model.ForumComment{
		{Content: "same issue here", Author: &model.UserRef{Username: "dev"}},
	}})
	assert.Contains(t, xansi.Strip(c.detailBody), "same issue here")
	assert.Contains(t, xansi.Strip(c.detailBody), "dev")
}
