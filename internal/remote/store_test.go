package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/index"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/radar"
)

func acmeDataset() *domain.Dataset {
	ds := domain.NewDataset()
	ds.Put("acme.com", "acme", domain.NewUserCompany("acme", domain.Fields{
		Name:         "Acme",
		Rating:       3,
		Descriptions: domain.Descriptions{Usability: "ok"},
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	return ds
}

func newBackedStore(t *testing.T, baseURL string) (*Store, *index.MemoryIndex) {
	t.Helper()
	local := index.NewMemoryIndex()
	client := newTestClient(baseURL, local)
	return NewStore(local, client, logger.Nop()), local
}

func TestStore_SaveMirrorsWhenAuthenticated(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	s.Client().SetOnline(true)
	_, err := s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, acmeDataset()))

	got, err := local.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, got.Companies, "acme")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, "acme", fs.data.Mappings["acme.com"])
}

func TestStore_SaveOfflineStaysLocal(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, acmeDataset()))
	assert.Equal(t, 1, local.Count())

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Empty(t, fs.data.Companies)
}

func TestStore_MirrorFailureIsNotAnError(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	s.Client().SetOnline(true)
	_, err := s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	fs.mu.Lock()
	fs.rejectToken = true
	fs.mu.Unlock()

	require.NoError(t, s.Save(ctx, acmeDataset()))
	assert.Equal(t, 1, local.Count())
	assert.Equal(t, StateOnlineUnauthenticated, s.Client().State())
}

func TestStore_DeleteCompany(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, local.Save(ctx, acmeDataset()))
	s.Client().SetOnline(true)
	_, err := s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompany(ctx, "acme"))
	assert.Equal(t, 0, local.Count())

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, []string{"acme"}, fs.deleted)
}

func TestStore_Sync(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	fs.mu.Lock()
	fs.data.Mappings["shop.com"] = "shop"
	fs.data.Companies["shop"] = domain.NewUserCompany("shop", domain.Fields{Name: "Shop", Rating: 2}, time.Now())
	fs.data.Mappings["ghost.com"] = "ghost"
	fs.mu.Unlock()

	require.NoError(t, local.Save(ctx, acmeDataset()))

	_, err := s.Sync(ctx)
	require.ErrorIs(t, err, domain.ErrNetworkUnavailable)

	s.Client().SetOnline(true)
	_, err = s.Sync(ctx)
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	_, err = s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	res, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Companies)
	assert.Equal(t, 2, res.URLs)

	got, err := local.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shop", got.Companies["shop"].ID)
	assert.Equal(t, "acme", got.Mappings["acme.com"])
	assert.NotContains(t, got.Mappings, "ghost.com", "dangling mappings are pruned")
}

func TestStore_SyncFailureLeavesLocalUntouched(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, local.Save(ctx, acmeDataset()))
	s.Client().SetOnline(true)
	_, err := s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	fs.mu.Lock()
	fs.failSync = true
	fs.mu.Unlock()

	_, err = s.Sync(ctx)
	require.ErrorIs(t, err, domain.ErrRemote)

	got, err := local.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Companies, 1)
	assert.Equal(t, "acme", got.Mappings["acme.com"])
}

func TestStore_SyncRejectsReplyWithoutData(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"message only", `{"message":"ok"}`},
		{"empty body", " "},
		{"null data", `{"message":"ok","data":null}`},
		{"null mappings", `{"data":{"companies":{}}}`},
		{"null companies", `{"data":{"mappings":{"acme.com":"acme"},"companies":null}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, srv := newFakeServer(t)
			s, local := newBackedStore(t, srv.URL)
			ctx := context.Background()

			require.NoError(t, local.Save(ctx, acmeDataset()))
			s.Client().SetOnline(true)
			_, err := s.Client().Login(ctx, "alice", "secret")
			require.NoError(t, err)

			fs.mu.Lock()
			fs.syncReply = tc.reply
			fs.mu.Unlock()

			res, err := s.Sync(ctx)
			require.ErrorIs(t, err, domain.ErrRemote)
			assert.Nil(t, res)

			got, err := local.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, got.Companies, 1)
			assert.Equal(t, "acme", got.Mappings["acme.com"])
		})
	}
}

func TestStore_SyncSerialisesWithEdits(t *testing.T) {
	fs, srv := newFakeServer(t)
	s, local := newBackedStore(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, local.Save(ctx, acmeDataset()))
	svc := radar.NewService(s, logger.Nop())
	s.SetLocker(svc.Locker())

	s.Client().SetOnline(true)
	_, err := s.Client().Login(ctx, "alice", "secret")
	require.NoError(t, err)

	gate, started := make(chan struct{}), make(chan struct{}, 1)
	fs.mu.Lock()
	fs.syncGate, fs.syncStarted = gate, started
	fs.mu.Unlock()

	syncErr := make(chan error, 1)
	go func() {
		_, err := s.Sync(ctx)
		syncErr <- err
	}()
	<-started

	editErr := make(chan error, 1)
	go func() { editErr <- svc.AddURL(ctx, "acme", "acme.org") }()

	select {
	case err := <-editErr:
		t.Fatalf("edit completed while the sync was in flight (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-syncErr)
	require.NoError(t, <-editErr)

	got, err := local.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Mappings["acme.org"], "edit made during a sync is kept")
	assert.Equal(t, "acme", got.Mappings["acme.com"])
}
