package files

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/qrscan/internal/crypto"
	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/payload"
	"github.com/harrylevesque/qrscan/internal/utils"
)

// fakeClock advances by one second on every read.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newScan(raw string) *models.Scan {
	return models.NewScan(payload.Classify(raw), "test", nil)
}

func storeImpls(t *testing.T, dedup time.Duration) map[string]ScanStore {
	t.Helper()
	dir := t.TempDir()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	js, err := NewJSONStore(filepath.Join(dir, "scans.json"), nil, dedup)
	require.NoError(t, err)
	js.now = (&fakeClock{t: start}).now

	sq, err := NewSQLiteStore(filepath.Join(dir, "scans.db"), dedup)
	require.NoError(t, err)
	sq.now = (&fakeClock{t: start}).now
	t.Cleanup(func() { sq.Close() })

	return map[string]ScanStore{"json": js, "sqlite": sq}
}

func TestScanStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t, 0) {
		t.Run(name, func(t *testing.T) {
			wifi := newScan("WIFI:T:WPA;S:MyNet;P:secret123;H:false;")
			wifi.Screenshot = []byte{0x89, 'P', 'N', 'G'}
			require.NoError(t, s.Save(ctx, wifi))
			assert.True(t, strings.HasPrefix(wifi.ID, "scan--"))
			assert.False(t, wifi.CreatedAt.IsZero())

			url := newScan("https://www.example.com")
			require.NoError(t, s.Save(ctx, url))
			text := newScan("Hello World")
			require.NoError(t, s.Save(ctx, text))

			got, err := s.Get(ctx, wifi.ID)
			require.NoError(t, err)
			assert.Equal(t, models.KindWifi, got.Kind)
			assert.Equal(t, wifi.Payload, got.Payload)
			assert.Equal(t, wifi.Screenshot, got.Screenshot)
			assert.Equal(t, "test", got.Source)
			assert.True(t, wifi.CreatedAt.Equal(got.CreatedAt))

			all, err := s.List(ctx, ListOptions{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{text.ID, url.ID, wifi.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

			onlyURL, err := s.List(ctx, ListOptions{Kind: models.KindURL})
			require.NoError(t, err)
			require.Len(t, onlyURL, 1)
			assert.Equal(t, url.ID, onlyURL[0].ID)

			limited, err := s.List(ctx, ListOptions{Limit: 2})
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			require.NoError(t, s.Delete(ctx, url.ID))
			assert.ErrorIs(t, s.Delete(ctx, url.ID), ErrNotFound)
			_, err = s.Get(ctx, url.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Clear(ctx))
			all, err = s.List(ctx, ListOptions{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestScanStore_Dedup(t *testing.T) {
	ctx := context.Background()
	// The fake clock advances one second per save, so a 90s window
	// rejects an immediate repeat of the latest payload.
	for name, s := range storeImpls(t, 90*time.Second) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, newScan("tel:555")))
			assert.ErrorIs(t, s.Save(ctx, newScan("tel:555")), ErrDuplicate)
			require.NoError(t, s.Save(ctx, newScan("tel:556")))
			require.NoError(t, s.Save(ctx, newScan("tel:555")))
		})
	}
}

func TestJSONStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scans.json")
	key := bytes.Repeat([]byte{9}, 32)

	s, err := NewJSONStore(path, key, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, newScan("WIFI:T:WPA;S:Secret;P:hunter2;H:false;")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	reopened, err := NewJSONStore(path, key, 0)
	require.NoError(t, err)
	all, err := reopened.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.WifiFields{Security: "WPA", SSID: "Secret", Password: "hunter2"}, all[0].Payload.Fields)

	_, err = NewJSONStore(path, bytes.Repeat([]byte{1}, 32), 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(crypto.MasterKeyEnv, "")

	s, err := Open(&utils.Config{Store: utils.StoreSQLite, StorePath: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	keyFile := filepath.Join(dir, "master.key")
	_, err = Open(&utils.Config{Store: utils.StoreJSON, StorePath: filepath.Join(dir, "a.json"), Encrypt: true, KeyFile: keyFile})
	assert.Error(t, err)

	require.NoError(t, crypto.WriteMasterKey(keyFile, false))
	s, err = Open(&utils.Config{Store: utils.StoreJSON, StorePath: filepath.Join(dir, "a.json"), Encrypt: true, KeyFile: keyFile})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	_, err = Open(&utils.Config{Store: "redis"})
	assert.Error(t, err)
}
