package dynamodb

import (
	"testing"
	"time"
)

func TestPartitionKey(t *testing.T) {
	got := partitionKey("acme/widget")
	if got != "WATCH#acme/widget" {
		t.Errorf("partitionKey = %q, want %q", got, "WATCH#acme/widget")
	}
}

func TestLockSK(t *testing.T) {
	got := lockSK("check")
	if got != "LOCK#check" {
		t.Errorf("lockSK = %q, want %q", got, "LOCK#check")
	}
}

func TestIsEventKey(t *testing.T) {
	cases := map[string]bool{
		"deploy_01HZX":  true,
		"manual_01HZX":  true,
		"latest_tag":    false,
		"last_check":    false,
		"LOCK#check":    false,
		"deployment_01": false,
	}
	for key, want := range cases {
		if got := isEventKey(key); got != want {
			t.Errorf("isEventKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestIsExpired(t *testing.T) {
	if isExpired(0) {
		t.Error("zero epoch means no expiry")
	}
	if !isExpired(time.Now().Add(-time.Second).Unix()) {
		t.Error("past epoch should be expired")
	}
	if isExpired(ttlEpoch(time.Hour)) {
		t.Error("future epoch should not be expired")
	}
}
