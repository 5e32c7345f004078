package game

import "time"

type timerTier struct {
	start time.Duration
	step  time.Duration
}

var timerTiers = map[string]timerTier{
	// Starts @ 90s and decrements by 5s per pick
	"leisurely": {start: 90 * time.Second, step: 5 * time.Second},
	// Starts @ 75s and decrements by 5s per pick
	"slow": {start: 75 * time.Second, step: 5 * time.Second},
	// A happy medium between slow, and fast.
	"moderate": {start: 55 * time.Second, step: 5 * time.Second},
	// Based on official WOTC timing
	"fast": {start: 40 * time.Second, step: 5 * time.Second},
}

const minPickTime = 3 * time.Second

// PickTime returns the time allowed for the given zero-based pick of a booster.
// A zero duration means the timer is disabled.
func PickTime(tier string, pickNumber int) time.Duration {
	t, ok := timerTiers[tier]
	if !ok {
		return 0
	}
	roundTime := t.start - t.step*time.Duration(pickNumber)
	if roundTime < minPickTime {
		roundTime = minPickTime
	}
	return roundTime
}
