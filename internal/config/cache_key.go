package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int64) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptClockKey returns the cache key holding an attempt's expiry unix
// timestamp, read by the WebSocket clock endpoint.
func (r *CacheKeyStruct) AttemptClockKey(attemptID int64) string {
	return fmt.Sprintf("attempt:%d:clock", attemptID)
}

// AttemptGradingKey returns the cache key set while an attempt is queued
// for regrading, used to avoid enqueueing the same attempt twice.
func (r *CacheKeyStruct) AttemptGradingKey(attemptID int64) string {
	return fmt.Sprintf("attempt:%d:regrade_pending", attemptID)
}

var CacheKey = NewCacheKeyStruct()
