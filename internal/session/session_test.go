package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pcshop/internal/db/testdb"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

func newTestProvider(t *testing.T) (*Provider, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return &Provider{
		Repo:   &repo.GormRepo{DB: testdb.Open(t)},
		Secret: []byte("test-jwt-secret"),
		TTL:    time.Hour,
		Events: rec,
	}, rec
}

func TestProvider_SignUp_Validation(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "no at sign", email: "user", password: "secret1"},
		{name: "short password", email: "u@shop", password: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tt.email, tt.password, Profile{})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProvider_SignUpSignInGetUser(t *testing.T) {
	p, rec := newTestProvider(t)
	ctx := context.Background()

	first := "Ada"
	user, err := p.SignUp(ctx, " Ada@Shop.io ", "Secret123", Profile{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "ada@shop.io", user.Email)
	assert.False(t, user.IsAdmin)
	require.Len(t, rec.Events(events.TopicUsers), 1)

	_, err = p.SignUp(ctx, "ada@shop.io", "Secret123", Profile{})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = p.SignIn(ctx, "ada@shop.io", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@shop.io", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := p.SignIn(ctx, "ada@shop.io", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)
	assert.Equal(t, user.ID, s.User.ID)

	got, err := p.GetUser(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ada", *got.FirstName)

	isAdmin, err := p.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, p.SignOut(ctx, s.AccessToken))
	_, err = p.GetUser(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProvider_GetUser_ExpiredSession(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "old@shop.io", "Secret123", Profile{})
	require.NoError(t, err)

	p.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s, err := p.SignIn(ctx, "old@shop.io", "Secret123")
	require.NoError(t, err)
	p.Now = nil

	_, err = p.GetUser(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.GetUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_SessionLifecycle(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	storage := localstore.NewMemory()

	client := NewClient(p, storage)

	var seen []Event
	unsubscribe := client.Subscribe(func(ev Event, _ *Session) { seen = append(seen, ev) })

	_, err := client.SignUp(ctx, "grace@shop.io", "Secret123", Profile{})
	require.NoError(t, err)
	require.NotNil(t, client.Session())

	restored := NewClient(p, storage)
	s, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "grace@shop.io", s.User.Email)

	require.NoError(t, client.SignOut(ctx))
	assert.Nil(t, client.Session())

	again := NewClient(p, storage)
	s, err = again.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	unsubscribe()
	_, err = client.SignIn(ctx, "grace@shop.io", "Secret123")
	require.NoError(t, err)

	assert.Equal(t, []Event{EventSignedIn, EventSignedOut}, seen)
}

func TestClient_RestoreDropsRevokedToken(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	storage := localstore.NewMemory()

	client := NewClient(p, storage)
	_, err := client.SignUp(ctx, "lin@shop.io", "Secret123", Profile{})
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, client.Session().AccessToken))

	s, err := NewClient(p, storage).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, ok, err := storage.Get(localstore.KeySession)
	require.NoError(t, err)
	assert.False(t, ok)
}
