// Package earthdata handles NASA Earthdata login for GES DISC downloads.
//
// GES DISC answers an unauthenticated GET with a redirect to the Earthdata
// URS host, which expects HTTP basic auth and hands back a session cookie.
// NewHTTPClient builds a client that follows that dance: a cookie jar for
// the session and a transport that injects credentials only for the URS
// host, so they never leak to other servers on the redirect chain.
//
// WritePrerequisiteFiles covers tooling that reads the classic dotfiles
// (.netrc, .urs_cookies, .dodsrc) instead, per
// https://disc.gsfc.nasa.gov/information/howto (Earthdata prerequisite files).
package earthdata

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// URSHost is the Earthdata authentication endpoint.
const URSHost = "urs.earthdata.nasa.gov"

// Credentials is an Earthdata login pair.
type Credentials struct {
	Username string
	Password string
}

// Validate reports whether both fields are populated.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("earthdata: username and password are required")
	}
	return nil
}

// transport injects basic auth for requests to the URS host only.
type transport struct {
	creds Credentials
	base  http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host == URSHost {
		// Clone before mutating; RoundTrippers must not modify the request.
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.creds.Username, t.creds.Password)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewHTTPClient returns a client that authenticates against Earthdata URS.
// A zero timeout leaves the client unbounded.
func NewHTTPClient(creds Credentials, timeout time.Duration) (*http.Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("earthdata: create cookie jar: %w", err)
	}
	return &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: &transport{creds: creds},
	}, nil
}

// WritePrerequisiteFiles writes .netrc, .urs_cookies, and .dodsrc into dir
// (normally the user's home directory) and returns the paths written. On
// non-Windows systems the netrc is restricted to the owner; on Windows the
// .dodsrc is additionally copied into the current working directory, which
// is where the OPeNDAP tooling looks for it there.
func WritePrerequisiteFiles(dir string, creds Credentials) ([]string, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	netrc := filepath.Join(dir, ".netrc")
	cookies := filepath.Join(dir, ".urs_cookies")
	dodsrc := filepath.Join(dir, ".dodsrc")

	netrcBody := fmt.Sprintf("machine %s login %s password %s", URSHost, creds.Username, creds.Password)
	if err := os.WriteFile(netrc, []byte(netrcBody), 0o600); err != nil {
		return nil, fmt.Errorf("earthdata: write netrc: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(netrc, 0o600); err != nil {
			return nil, fmt.Errorf("earthdata: chmod netrc: %w", err)
		}
	}

	if err := os.WriteFile(cookies, nil, 0o644); err != nil {
		return nil, fmt.Errorf("earthdata: write cookie jar: %w", err)
	}

	sep := string(os.PathSeparator)
	dodsrcBody := fmt.Sprintf("HTTP.COOKIEJAR=%s%s.urs_cookies\nHTTP.NETRC=%s%s.netrc", dir, sep, dir, sep)
	if err := os.WriteFile(dodsrc, []byte(dodsrcBody), 0o644); err != nil {
		return nil, fmt.Errorf("earthdata: write dodsrc: %w", err)
	}

	paths := []string{netrc, cookies, dodsrc}

	if runtime.GOOS == "windows" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("earthdata: resolve working directory: %w", err)
		}
		local := filepath.Join(wd, ".dodsrc")
		if err := os.WriteFile(local, []byte(dodsrcBody), 0o644); err != nil {
			return nil, fmt.Errorf("earthdata: copy dodsrc: %w", err)
		}
		paths = append(paths, local)
	}

	return paths, nil
}
