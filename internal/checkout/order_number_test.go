package checkout

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)

	number, err := generateOrderNumber("GM", now)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^GM-20260828-[A-Z2-9]{6}$`), number)

	// Ambiguous characters never appear in the suffix.
	suffix := number[strings.LastIndex(number, "-")+1:]
	require.NotRegexp(t, regexp.MustCompile(`[0O1I]`), suffix)
}

func TestGenerateOrderNumberUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 8, 29, 5, 0, 0, 0, loc) // 2026-08-28 19:00 UTC

	number, err := generateOrderNumber("GM", now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(number, "GM-20260828-"), number)
}
