package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// AuthConfig holds Basic Auth credentials. Reads and updates are safe to
// interleave, so a SIGHUP reload can rotate credentials under live traffic.
type AuthConfig struct {
	mu       sync.RWMutex
	Enabled  bool
	User     string
	Password string
}

// Update replaces the credentials in place. The middleware reads through the
// same pointer, so the change applies to the next request.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.Enabled = enabled
	c.User = user
	c.Password = password
	c.mu.Unlock()
}

func (c *AuthConfig) get() (enabled bool, user, password string) {
	c.mu.RLock()
	enabled = c.Enabled
	user = c.User
	password = c.Password
	c.mu.RUnlock()
	return
}

// pathSet matches request paths against an exclusion list. Entries ending in
// "*" match by prefix, anything else matches exactly.
type pathSet struct {
	exact    map[string]bool
	prefixes []string
}

func newPathSet(paths []string) pathSet {
	set := pathSet{exact: make(map[string]bool, len(paths))}
	for _, path := range paths {
		if strings.HasSuffix(path, "*") {
			set.prefixes = append(set.prefixes, strings.TrimSuffix(path, "*"))
		} else {
			set.exact[path] = true
		}
	}
	return set
}

func (s pathSet) contains(path string) bool {
	if s.exact[path] {
		return true
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Auth guards requests with Basic Auth. Paths in excludePaths bypass the
// check; the server excludes / and /health so welcome and probe traffic
// works without credentials even when predictions are locked down.
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	open := newPathSet(excludePaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enabled, wantUser, wantPassword := config.get()

			if !enabled || open.contains(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			// Constant-time comparison; both halves always run.
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
			passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1

			if !userMatch || !passwordMatch {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="irisd"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
