package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStatusKey returns the cache key holding the last-mutation marker
// for an address-coded session. Pollers read this cheap key to decide
// whether to fetch the full payload.
func (r *CacheKeyStruct) SessionStatusKey(addressCode string) string {
	return fmt.Sprintf("session:%s:status", addressCode)
}

// SubjectEventsChannel returns the Redis Pub/Sub channel carrying live
// engine events (broadcast, response, ranking, ended) for a subject.
func (r *CacheKeyStruct) SubjectEventsChannel(subjectID string) string {
	return fmt.Sprintf("subject:%s:events", subjectID)
}

// ActivityRankingKey returns the cache key for an activity's last
// computed ranking payload.
func (r *CacheKeyStruct) ActivityRankingKey(activityID string) string {
	return fmt.Sprintf("activity:%s:ranking", activityID)
}

var CacheKey = NewCacheKeyStruct()
