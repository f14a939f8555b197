package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgun_Send(t *testing.T) {
	var path, to, subject, html string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		to, subject, html = r.FormValue("to"), r.FormValue("subject"), r.FormValue("html")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	t.Cleanup(srv.Close)

	m := NewMailgun("mg.example.com", "key-test", "Directory <no-reply@mg.example.com>")
	m.SetAPIBase(srv.URL + "/v3")

	err := m.Send(context.Background(), "test@test.com", "Welcome", "hi", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "/v3/mg.example.com/messages", path)
	assert.Equal(t, "test@test.com", to)
	assert.Equal(t, "Welcome", subject)
	assert.Equal(t, "<p>hi</p>", html)
}

func TestMailgun_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	m := NewMailgun("mg.example.com", "bad", "no-reply@mg.example.com")
	m.SetAPIBase(srv.URL + "/v3")
	assert.Error(t, m.Send(context.Background(), "test@test.com", "s", "t", ""))
}
