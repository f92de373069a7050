package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	tomlrepo "github.com/bnema/memefi-tapper/internal/adapters/repo/toml"
	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestSessionAddThenList(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "session", "add", credentialFixture(12345, "ada"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added session ada")

	_, _, err = executeCLI(t, dir, "session", "add", credentialFixture(777, ""))
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, dir, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1. ada (12345)")
	assert.Contains(t, stdout, "2. 777 (777)")
}

func TestSessionAddRejectsMalformedCredential(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCLI(t, dir, "session", "add", "query_id=abc&hash=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedCredential)

	_, statErr := os.Stat(filepath.Join(dir, "query_ids.txt"))
	assert.True(t, os.IsNotExist(statErr), "rejected credentials must not be written")
}

func TestSessionListFlagsInvalidLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "query_ids.txt"), []byte("garbage\n"+credentialFixture(1, "ada")+"\n"), 0o600))

	stdout, _, err := executeCLI(t, dir, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1. invalid credential")
	assert.Contains(t, stdout, "2. ada (1)")
}

func TestSessionListEmpty(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No sessions stored.")
}

func TestSessionDeleteByNameAndPosition(t *testing.T) {
	dir := t.TempDir()
	lines := credentialFixture(1, "ada") + "\n" + credentialFixture(2, "bob") + "\n" + credentialFixture(3, "cy") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "query_ids.txt"), []byte(lines), 0o600))

	stdout, _, err := executeCLI(t, dir, "session", "delete", "bob")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted session bob")

	_, _, err = executeCLI(t, dir, "session", "delete", "2")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, dir, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1. ada (1)")
	assert.NotContains(t, stdout, "bob")
	assert.NotContains(t, stdout, "cy")
}

func TestSessionDeleteUnknownName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "query_ids.txt"), []byte(credentialFixture(1, "ada")+"\n"), 0o600))

	_, _, err := executeCLI(t, dir, "session", "delete", "zed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session \"zed\" not found")
}

func TestStatusWithoutSnapshots(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No session snapshots recorded yet.")
}

func TestStatusRendersSavedSnapshots(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFixture(t, dir, domain.SessionSnapshot{
		SessionName: "ada",
		Balance:     1250000,
		Energy:      400,
		MaxEnergy:   1000,
		BossLevel:   7,
		BossHealth:  50,
		Passes:      3,
		LastPassAt:  time.Now().Add(-time.Minute),
	})

	stdout, _, err := executeCLI(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 1")
	assert.Contains(t, stdout, "ada")
	assert.Contains(t, stdout, "balance: 1,250,000")
	assert.NotContains(t, stdout, "[stale]")
}

func TestStatusJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFixture(t, dir, domain.SessionSnapshot{SessionName: "ada", Balance: 42})

	stdout, _, err := executeCLI(t, dir, "status", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"SessionName\": \"ada\"")
	assert.Contains(t, stdout, "\"Balance\": 42")

	stdout, _, err = executeCLI(t, t.TempDir(), "status", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}

func TestStatusForUnknownSession(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFixture(t, dir, domain.SessionSnapshot{SessionName: "ada"})

	_, _, err := executeCLI(t, dir, "status", "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestConfigInitWritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote config.toml")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "graphql_url")
	assert.Contains(t, string(data), "random_taps_count")

	_, _, err = executeCLI(t, dir, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, dir, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigFileIsReadByOtherCommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.toml"), []byte("query_ids_path = 'accounts.txt'\n"), 0o600))

	_, _, err := executeCLI(t, dir, "--config", "custom.toml", "session", "add", credentialFixture(1, "ada"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "accounts.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "query_id=")
}

func TestInvalidSettingsAreReported(t *testing.T) {
	t.Setenv("SIGNATURE_STORE", "etcd")

	_, _, err := executeCLI(t, t.TempDir(), "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestRunWithoutCredentials(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials found")
}

func TestProxyCheckReportsOrigin(t *testing.T) {
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "echo.invalid", r.Host)
		time.Sleep(200 * time.Millisecond)
		_, _ = fmt.Fprint(w, `{"origin":"203.0.113.9"}`)
	}))
	defer proxyServer.Close()

	proxyURL, err := url.Parse(proxyServer.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proxies.txt"), []byte(proxyURL.Host+"\n"), 0o600))
	t.Setenv("PROXY_CHECK_URL", "http://echo.invalid/ip")

	stdout, stderr, err := executeCLI(t, dir, "proxy", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "http://"+proxyURL.Host+"  ok  203.0.113.9")
	assert.Contains(t, stderr, "Checking proxies")
}

func TestProxyCheckFailsOnUnreachableProxy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proxies.txt"), []byte("127.0.0.1:1\n"), 0o600))
	t.Setenv("PROXY_CHECK_URL", "http://echo.invalid/ip")

	stdout, _, err := executeCLI(t, dir, "proxy", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 proxies failed")
	assert.Contains(t, stdout, "http://127.0.0.1:1  failed")
}

func TestProxyCheckWithoutProxies(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "proxy", "check")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoProxies)
}

func executeCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func credentialFixture(userID int64, username string) string {
	user := fmt.Sprintf(`{"id":%d,"first_name":"Test","username":%q}`, userID, username)
	return "query_id=AAH" + fmt.Sprint(userID) + "&user=" + url.QueryEscape(user) + "&auth_date=1718000000&hash=abc123"
}

func writeSnapshotFixture(t *testing.T, dir string, snapshot domain.SessionSnapshot) {
	t.Helper()

	repo, err := tomlrepo.NewRepository(filepath.Join(dir, "sessions.toml"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), snapshot))
}
