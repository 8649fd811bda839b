package dynamodb

import (
	"strings"
	"time"

	"github.com/dwsmith1983/tagwatch/internal/provider"
)

// Attribute names.
const (
	attrPK    = "PK"
	attrSK    = "SK"
	attrValue = "value"
	attrTTL   = "ttl"
)

// PK/SK prefix constants.
const (
	prefixWatch = "WATCH#"
	prefixLock  = "LOCK#"
)

func partitionKey(namespace string) string { return prefixWatch + namespace }

func lockSK(key string) string { return prefixLock + key }

// isEventKey reports whether key names an append-only trigger event row,
// the only rows subject to retention TTL.
func isEventKey(key string) bool {
	return strings.HasPrefix(key, provider.PrefixDeploy) || strings.HasPrefix(key, provider.PrefixManual)
}

func ttlEpoch(d time.Duration) int64 {
	return time.Now().Add(d).Unix()
}

func isExpired(epoch int64) bool {
	return epoch > 0 && time.Now().Unix() > epoch
}
