package constants

import (
	"strings"
	"time"
)

// Redis Cache Configuration
// Pattern: neontix:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Catalog data changes only when an admin edits an event
const (
	TTL_CATALOG_DETAIL = 10 * time.Minute
	TTL_CATALOG_LIST   = 2 * time.Minute
)

// Admin read models change with every booking
const (
	TTL_ANALYTICS = 1 * time.Minute
)

// Occupancy feeds the seat map and must stay close to real time
const (
	TTL_OCCUPANCY = 30 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "neontix"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"         // + :category:X:min:Y:max:Z:...
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
)

// ================== BOOKINGS MODULE ==================

const (
	CACHE_KEY_EVENT_OCCUPANCY = CACHE_PREFIX + ":bookings:occupancy:event:" // + event-id
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard:admin"
	CACHE_KEY_ANALYTICS_OVERVIEW  = CACHE_PREFIX + ":analytics:overview:admin"
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENT_LIST = CACHE_PREFIX + ":events:list*"
	PATTERN_INVALIDATE_ANALYTICS  = CACHE_PREFIX + ":analytics:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventListKey constructs the list key from the non-empty filter parts
// Example: BuildEventListKey("category", "movie", "max", "40") -> "neontix:events:list:category:movie:max:40"
func BuildEventListKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(CACHE_KEY_EVENTS_LIST)
	for i := 0; i+1 < len(parts); i += 2 {
		if parts[i+1] == "" {
			continue
		}
		b.WriteString(":" + parts[i] + ":" + parts[i+1])
	}
	return b.String()
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildOccupancyKey(eventID string) string {
	return CACHE_KEY_EVENT_OCCUPANCY + eventID
}
