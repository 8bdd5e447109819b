package earthdata

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Username: "user", Password: "hunter2"}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, testCreds.Validate())
	assert.Error(t, Credentials{Username: "user"}.Validate())
	assert.Error(t, Credentials{Password: "pw"}.Validate())
	assert.Error(t, Credentials{}.Validate())
}

func TestNewHTTPClient_RequiresCredentials(t *testing.T) {
	_, err := NewHTTPClient(Credentials{}, time.Second)
	require.Error(t, err)
}

func TestTransport_InjectsBasicAuthForURSOnly(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	// Rewrite every request to the test server but preserve the requested
	// host so the transport's host check is exercised.
	rt := &transport{creds: testCreds, base: rewriteHost(t, srv.URL)}
	client := &http.Client{Transport: rt, Timeout: time.Second}

	resp, err := client.Get("https://" + URSHost + "/oauth")
	require.NoError(t, err)
	resp.Body.Close()

	user, pass, ok := parseBasicAuth(t, gotAuth)
	require.True(t, ok)
	assert.Equal(t, "user", user)
	assert.Equal(t, "hunter2", pass)

	gotAuth = ""
	resp, err = client.Get("https://gpm1.gesdisc.eosdis.nasa.gov/data")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, gotAuth, "credentials must not leak to non-URS hosts")
}

// rewriteHost returns a RoundTripper that redirects any request to the test
// server without touching the request the client sees.
func rewriteHost(t *testing.T, target string) http.RoundTripper {
	t.Helper()
	u, err := url.Parse(target)
	require.NoError(t, err)
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		clone := req.Clone(req.Context())
		clone.URL.Scheme = u.Scheme
		clone.URL.Host = u.Host
		clone.Host = u.Host
		return http.DefaultTransport.RoundTrip(clone)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func parseBasicAuth(t *testing.T, header string) (string, string, bool) {
	t.Helper()
	req := &http.Request{Header: http.Header{"Authorization": []string{header}}}
	return req.BasicAuth()
}

func TestWritePrerequisiteFiles(t *testing.T) {
	dir := t.TempDir()

	paths, err := WritePrerequisiteFiles(dir, testCreds)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(paths), 3)

	netrc, err := os.ReadFile(filepath.Join(dir, ".netrc"))
	require.NoError(t, err)
	assert.Equal(t, "machine urs.earthdata.nasa.gov login user password hunter2", string(netrc))

	cookies, err := os.ReadFile(filepath.Join(dir, ".urs_cookies"))
	require.NoError(t, err)
	assert.Empty(t, cookies)

	dodsrc, err := os.ReadFile(filepath.Join(dir, ".dodsrc"))
	require.NoError(t, err)
	assert.Contains(t, string(dodsrc), "HTTP.COOKIEJAR="+dir)
	assert.Contains(t, string(dodsrc), "HTTP.NETRC="+dir)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, ".netrc"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestWritePrerequisiteFiles_Overwrites(t *testing.T) {
	dir := t.TempDir()

	_, err := WritePrerequisiteFiles(dir, Credentials{Username: "old", Password: "old"})
	require.NoError(t, err)
	_, err = WritePrerequisiteFiles(dir, testCreds)
	require.NoError(t, err)

	netrc, err := os.ReadFile(filepath.Join(dir, ".netrc"))
	require.NoError(t, err)
	assert.Contains(t, string(netrc), "login user")
}

func TestWritePrerequisiteFiles_RequiresCredentials(t *testing.T) {
	_, err := WritePrerequisiteFiles(t.TempDir(), Credentials{})
	require.Error(t, err)
}
