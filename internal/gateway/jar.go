package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// CookieStore keeps the jar contents between runs.
type CookieStore interface {
	LoadCookies(ctx context.Context) ([]*http.Cookie, error)
	ReplaceCookies(ctx context.Context, cookies []*http.Cookie) error
}

// PersistentJar is a cookie jar for one backend that writes its cookies to a
// CookieStore after every change. This is how the refresh credential survives
// between CLI invocations.
type PersistentJar struct {
	inner   *cookiejar.Jar
	base    *url.URL
	store   CookieStore
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]*http.Cookie
}

func NewPersistentJar(ctx context.Context, baseURL string, store CookieStore, logger *slog.Logger) (*PersistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: invalid base url: %w", err)
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &PersistentJar{
		inner:   inner,
		base:    base,
		store:   store,
		logger:  logger,
		entries: make(map[string]*http.Cookie),
	}

	if store == nil {
		return j, nil
	}

	saved, err := store.LoadCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: load: %w", err)
	}
	now := time.Now()
	live := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		j.entries[cookieKey(c)] = c
		live = append(live, c)
	}
	inner.SetCookies(base, live)
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if u.Host != j.base.Host {
		return
	}

	j.mu.Lock()
	now := time.Now()
	for _, c := range cookies {
		key := cookieKey(c)
		switch {
		case c.MaxAge < 0:
			delete(j.entries, key)
		case c.MaxAge > 0:
			stored := *c
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
			stored.MaxAge = 0
			j.entries[key] = &stored
		case !c.Expires.IsZero() && !c.Expires.After(now):
			delete(j.entries, key)
		default:
			stored := *c
			j.entries[key] = &stored
		}
	}
	j.persist(j.snapshotLocked())
	j.mu.Unlock()
}

func (j *PersistentJar) snapshotLocked() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j.entries))
	for _, c := range j.entries {
		copied := *c
		out = append(out, &copied)
	}
	return out
}

func (j *PersistentJar) persist(cookies []*http.Cookie) {
	if j.store == nil {
		return
	}
	if err := j.store.ReplaceCookies(context.Background(), cookies); err != nil {
		j.logger.Warn("cookie jar: persist failed", "error", err)
	}
}

func cookieKey(c *http.Cookie) string {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return c.Name + "|" + c.Domain + "|" + path
}
