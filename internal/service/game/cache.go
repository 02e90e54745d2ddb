package game

import (
	"context"
	"encoding/json"
)

const (
	keyRecentAll  = "games:recent"
	keyRecentUser = "games:recent:user:"
	keyStatusUser = "games:status:user:"

	// generation counters, bumped by every write touching the scope
	genAll  = "games:gen:all"
	genUser = "games:gen:user:"
)

// reportKey stamps base with the current generation of its scope. A report
// computed before a write lands under the old generation, which no later
// read asks for. ok is false when there is no cache or it cannot be read.
func (s *Service) reportKey(ctx context.Context, scope, base string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Get(ctx, scope)
	if err != nil {
		s.log.WithError(err).WithField("key", scope).Warn("report cache unreadable, bypassing")
		return "", false
	}
	if gen == "" {
		gen = "0"
	}
	return base + "@" + gen, true
}

// cacheGet decodes a cached report into dest. Any miss or cache error reports false.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("dropping undecodable cache entry")
		_ = s.cache.Del(ctx, key)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to cache report")
	}
}

// invalidate bumps the global generation and those of userIDs. Entries of
// older generations are left to expire.
func (s *Service) invalidate(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	scopes := []string{genAll}
	for _, id := range userIDs {
		if id != "" {
			scopes = append(scopes, genUser+id)
		}
	}
	for _, scope := range scopes {
		if _, err := s.cache.Incr(ctx, scope); err != nil {
			s.log.WithError(err).WithField("key", scope).Warn("failed to invalidate cached reports")
		}
	}
}
