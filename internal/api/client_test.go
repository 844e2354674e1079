package api

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestHeadersCarryTokenVerbatim(t *testing.T) {
	h := Headers("abc123==")
	assert.Equal(t, "Token abc123==", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))

	anon := Headers("")
	assert.Empty(t, anon.Get("Authorization"))
}

func TestDecodeList(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}

	tests := []struct {
		name    string
		body    string
		want    []item
		wantErr bool
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: []item{{1}, {2}}},
		{name: "envelope", body: `{"count":2,"results":[{"id":1},{"id":2}]}`, want: []item{{1}, {2}}},
		{name: "envelope without results", body: `{"count":0}`, want: []item{}},
		{name: "empty array", body: `[]`, want: []item{}},
		{name: "scalar", body: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[item]([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got)
		})
	}
}

func TestLogin(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EndpointLogin, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"key":"tok-1"}`))
	})

	key, err := c.Login(context.Background(), "amara", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", key)
}

func TestForumCommentsScopedToPost(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointForumComments, r.URL.Path)
		assert.Equal(t, "9f2c", r.URL.Query().Get("post"))
		w.Write([]byte(`{"results":[{"id":"c1","post":"9f2c","content":"same issue here"}]}`))
	})

	items, err := c.ForumComments(context.Background(), "9f2c")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "same issue here", items[0].Content)
}

func TestLoginValidationError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
	})

	_, err := c.Login(context.Background(), "amara", "wrong")
	require.Error(t, err)

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Contains(t, re.Error(), "Unable to log in")
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestUnauthorizedMatching(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"detail":"Invalid token."}`))
		})
		_, err := c.UserStatus(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized, "status %d", status)
	}
}

func TestRequestErrorMessageOrdering(t *testing.T) {
	re := parseRequestError(http.StatusBadRequest, []byte(
		`{"username":["taken"],"amount":["required","must be positive"],"detail":"bad input"}`))

	assert.Equal(t, "bad input; amount: required, must be positive; username: taken", re.Error())
	assert.Equal(t, "taken", re.FieldError("username"))
	assert.Empty(t, re.FieldError("email"))
}

func TestRequestErrorUnparseableBody(t *testing.T) {
	re := parseRequestError(http.StatusInternalServerError, []byte("<html>boom</html>"))
	assert.Equal(t, "server returned Internal Server Error", re.Error())
}

func TestListRequestsUseTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})
	c.SetToken("tok-2")

	items, err := c.Complaints(context.Background(), ScopeComplaintsByAuthor("amara"))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "Token tok-2", gotAuth)
	assert.Equal(t, "author__username=amara", gotQuery)
}

func TestCreateBillSendsMultipart(t *testing.T) {
	var fields map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		form, err := mr.ReadForm(1 << 20)
		require.NoError(t, err)
		fields = map[string]string{}
		for k, v := range form.Value {
			fields[k] = v[0]
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":9}`))
	})
	c.SetToken("tok-3")

	err := c.CreateBill(context.Background(), BillPayload{
		FlatID:    4,
		BillType:  "maintenance",
		Amount:    "1200.50",
		BillMonth: 8,
		BillYear:  2026,
		DueDate:   "2026-09-10",
	})
	require.NoError(t, err)

	assert.Equal(t, "4", fields["flat_id"])
	assert.Equal(t, "maintenance", fields["bill_type"])
	assert.Equal(t, "1200.50", fields["amount"])
	assert.Equal(t, "unpaid", fields["status"])
}

func TestPayBillPatchesStatusAndPaymentDate(t *testing.T) {
	var method, path string
	var fields map[string][]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.PayBill(context.Background(), 7))
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/bills/7/", path)
	assert.Equal(t, "paid", fields["status"][0])

	_, err := time.Parse(time.RFC3339, fields["payment_date"][0])
	assert.NoError(t, err)
}

func TestDecideCameraRequestOmitsEmptyLink(t *testing.T) {
	var fields map[string][]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.DecideCameraRequest(context.Background(), 3, "rejected", ""))
	assert.Equal(t, "rejected", fields["status"][0])
	assert.NotContains(t, fields, "access_link")

	require.NoError(t, c.DecideCameraRequest(context.Background(), 3, "approved", "https://cam.example/3"))
	assert.Equal(t, "https://cam.example/3", fields["access_link"][0])
}

func TestMarkNotificationReadPath(t *testing.T) {
	var method, path string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.MarkNotificationRead(context.Background(), 12))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/notifications/12/mark_read/", path)
}

func TestUpdateComplaintStatusStampsResolvedAt(t *testing.T) {
	var fields map[string][]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.UpdateComplaintStatus(context.Background(), 5, "in_progress", "on it"))
	assert.NotContains(t, fields, "resolved_at")

	require.NoError(t, c.UpdateComplaintStatus(context.Background(), 5, "resolved", "done"))
	require.Contains(t, fields, "resolved_at")
	_, err := time.Parse(time.RFC3339, fields["resolved_at"][0])
	assert.NoError(t, err)
}
