package templates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-directory/config"
)

func TestRender_UserCreated(t *testing.T) {
	cfg := &config.Config{AppName: "Directory", CompanyName: "ACME"}
	data := NewUserCreatedData(cfg, "test", "test@test.com", WithTime(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)))

	subject, text, html, err := Render(UserCreated, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Directory, test", subject)
	assert.Contains(t, text, "test@test.com")
	assert.Contains(t, text, "02 January 2026, 03:04")
	assert.Contains(t, html, "<strong>test@test.com</strong>")
}

func TestRender_ProfileUpdated(t *testing.T) {
	data := NewProfileUpdatedData(nil, "test", "test@test.com", map[string]string{
		"email":    "old@test.com -> test@test.com",
		"password": "changed",
	}, WithIP("203.0.113.7"))

	subject, text, html, err := Render(ProfileUpdated, data)
	require.NoError(t, err)
	assert.Equal(t, "Your directory profile was updated", subject)
	assert.Contains(t, text, "- email: old@test.com -> test@test.com")
	assert.Contains(t, text, "- password: changed")
	assert.Contains(t, html, "<strong>password</strong>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fb", defaultFn("fb", ""))
	assert.Equal(t, "fb", defaultFn("fb", nil))
	assert.Equal(t, "fb", defaultFn("fb", 0))
	assert.Equal(t, "x", defaultFn("fb", "x"))
	assert.Equal(t, 3, defaultFn("fb", 3))
}

type stubResolver struct {
	geo Geo
	err error
}

func (s stubResolver) Lookup(context.Context, string) (Geo, error) { return s.geo, s.err }

func TestLocalize(t *testing.T) {
	data := ToMap(NewBaseEmailData(nil, UserCreated, "u", "u@test.com",
		WithIP("203.0.113.7"), WithTime(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))))

	Localize(context.Background(), stubResolver{geo: Geo{City: "Jakarta", Country: "Indonesia", Timezone: "Asia/Jakarta"}}, data)

	assert.Equal(t, "Jakarta, Indonesia", data["Location"])
	assert.Equal(t, "02 January 2026, 10:04 WIB", data["Time"])
}

func TestLocalize_LookupFails(t *testing.T) {
	data := map[string]any{"IP": "203.0.113.7", "Time": "unchanged"}
	Localize(context.Background(), stubResolver{err: errors.New("down")}, data)
	assert.Equal(t, "unchanged", data["Time"])
	assert.NotContains(t, data, "Location")
}

func TestIPAPIResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/203.0.113.7", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","country":"Indonesia","regionName":"Jakarta","city":"Jakarta","timezone":"Asia/Jakarta"}`))
	}))
	defer srv.Close()

	g, err := IPAPIResolver{BaseURL: srv.URL}.Lookup(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "Jakarta, Jakarta, Indonesia", FormatGeo(g))
	assert.Equal(t, "Asia/Jakarta", g.Timezone)

	_, err = IPAPIResolver{BaseURL: srv.URL}.Lookup(context.Background(), " ")
	assert.Error(t, err)
}
