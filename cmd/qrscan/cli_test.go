package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/qrscan/internal/api"
	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/models"
)

// testConfig writes a config that keeps the history and logs in a temp dir.
func testConfig(t *testing.T) (configPath, storePath string) {
	t.Helper()
	for _, k := range []string{"QRSCAN_STORE", "QRSCAN_STORE_PATH", "QRSCAN_ENCRYPT", "QRSCAN_LOG_FILE", "QRSCAN_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	storePath = filepath.Join(dir, "scans.json")
	cfg := map[string]any{
		"storePath":      storePath,
		"logFile":        filepath.Join(dir, "qrscan.log"),
		"dedupWindowSec": 0,
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	configPath = filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, data, 0600))
	return configPath, storePath
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	cfg, _ := testConfig(t)

	out, err := execute(t, "", "--config", cfg, "classify", "WIFI:T:WPA;S:MyNet;P:secret123;H:false;")
	require.NoError(t, err)
	assert.Equal(t, "📶 WiFi Network\n  Network: MyNet\n  Security: WPA\n  Password: secret123\n", out)

	out, err = execute(t, "BEGIN:VCARD\nFN:Jane Doe\nTEL:555-1234\nEND:VCARD\n", "--config", cfg, "--json", "classify")
	require.NoError(t, err)
	var got classified
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, models.KindContact, got.Payload.Kind)
	assert.Equal(t, "👤", got.Fragment.Icon)
}

func TestWatchCommand(t *testing.T) {
	cfg, storePath := testConfig(t)

	in := "https://www.example.com\n\ngeo:37.7749,-122.4194?z=15\n"
	out, err := execute(t, in, "--config", cfg, "watch", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "🌐 Website URL")
	assert.Contains(t, out, "📍 Geographic Location")

	store, err := files.NewJSONStore(storePath, nil, 0)
	require.NoError(t, err)
	scans, err := store.List(context.Background(), files.ListOptions{})
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, models.KindGeo, scans[0].Kind)
	assert.Equal(t, "stdin", scans[0].Source)

	out, err = execute(t, "", "--config", cfg, "history", "list", "--kind", "url")
	require.NoError(t, err)
	assert.Contains(t, out, "https://www.example.com")
	assert.NotContains(t, out, "geo:")

	out, err = execute(t, "", "--config", cfg, "history", "show", scans[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "View on Maps")

	_, err = execute(t, "", "--config", cfg, "history", "clear")
	require.NoError(t, err)
	out, err = execute(t, "", "--config", cfg, "--json", "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestWatchOnce(t *testing.T) {
	cfg, _ := testConfig(t)
	out, err := execute(t, "tel:1\ntel:2\n", "--config", cfg, "watch", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "tel:1")
	assert.NotContains(t, out, "tel:2")
}

func TestHistoryErrors(t *testing.T) {
	cfg, _ := testConfig(t)
	_, err := execute(t, "", "--config", cfg, "history", "list", "--kind", "fax")
	assert.Error(t, err)
	_, err = execute(t, "", "--config", cfg, "history", "show", "scan--missing")
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestPushCommand(t *testing.T) {
	cfg, _ := testConfig(t)
	store, err := files.NewJSONStore(filepath.Join(t.TempDir(), "server.json"), nil, 0)
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewRouter(store, nil))
	t.Cleanup(srv.Close)

	out, err := execute(t, "", "--config", cfg, "push", "--server", srv.URL+"/", "mailto:a@b.com?subject=Hi&body=Yo")
	require.NoError(t, err)
	assert.Contains(t, out, "(Email Address)")

	scans, err := store.List(context.Background(), files.ListOptions{})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "cli", scans[0].Source)
	assert.Equal(t, models.EmailFields{Address: "a@b.com", Subject: "Hi", Body: "Yo"}, scans[0].Payload.Fields)
}

func TestServerURL(t *testing.T) {
	t.Setenv("QRSCAN_SERVER", "")
	assert.Equal(t, defaultServer, serverURL(""))
	t.Setenv("QRSCAN_SERVER", "https://scan.example/")
	assert.Equal(t, "https://scan.example", serverURL(""))
	assert.Equal(t, "http://other", serverURL("http://other"))
}
