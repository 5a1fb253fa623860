package memory

import (
	"strconv"
	"time"

	"autofilter-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps per-user search sessions in process memory.
// Sessions are volatile; abandoned ones expire after an hour.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Save stores the session under its user id, replacing any previous one.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(key(session.UserID), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID int64) (*store.Session, bool) {
	if x, found := r.cache.Get(key(userID)); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID int64) {
	r.cache.Delete(key(userID))
}
