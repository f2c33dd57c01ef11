package common

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
)

// Session keys shared by the handlers.
const (
	SessionKeyUserID = "authenticatedUserID"
	SessionKeyFlash  = "flash"
)

// NewSessionManager returns a cookie based session manager backed by store.
// Cookies are marked Secure outside development.
func NewSessionManager(store scs.Store, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = lifetime
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure

	return sm
}

// NewPostgresSessionStore stores sessions in the sessions table. Expired rows
// are filtered on read; no cleanup goroutine is started.
func NewPostgresSessionStore(db *sql.DB) scs.Store {
	return postgresstore.NewWithCleanupInterval(db, 0)
}

// CacheStore keeps sessions in process memory. Intended for development and
// tests; sessions do not survive a restart.
type CacheStore struct {
	c *Cache
}

func NewCacheStore(c *Cache) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Find(token string) ([]byte, bool, error) {
	v, ok := s.c.Get(CacheKeySession(token))
	if !ok {
		return nil, false, nil
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}

	return b, true, nil
}

func (s *CacheStore) Commit(token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		s.c.Delete(CacheKeySession(token))
		return nil
	}

	s.c.Set(CacheKeySession(token), b, ttl)
	return nil
}

func (s *CacheStore) Delete(token string) error {
	s.c.Delete(CacheKeySession(token))
	return nil
}
