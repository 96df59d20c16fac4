package store

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestWindowMemberUniquePerAttempt(t *testing.T) {
	now := time.Unix(1700000000, 0)

	// Two attempts in the same microsecond must still produce two distinct
	// sorted-set members so the window counts both.
	first := windowMember(now)
	second := windowMember(now)
	if first == second {
		t.Fatalf("members collide for simultaneous attempts: %q", first)
	}
}

func TestWindowMemberCarriesTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 123456000)

	member := windowMember(now)
	prefix, _, ok := strings.Cut(member, ":")
	if !ok {
		t.Fatalf("member %q has no suffix separator", member)
	}
	if prefix != strconv.FormatInt(now.UnixMicro(), 10) {
		t.Fatalf("member %q does not start with the attempt micros", member)
	}
}
