// Package progression implements experience thresholds, experience awards and level-up growth.
//
// Thresholds are float64: the cost of the highest levels exceeds the int64 range. Stored
// experience is an int64 that saturates at MaxExp, so MaxReachableLevel is the highest level
// experience alone can reach.
package progression

import "math"

// MaxExp is the most experience a character can hold.
const MaxExp int64 = math.MaxInt64

const (
	// MaxLevel is the level cap.
	MaxLevel = 100
	// BaseExp is the experience cost of level 1.
	BaseExp = 100.0
	// ExpMultiplier is the per-level growth of the experience cost.
	ExpMultiplier = 1.5
	// PartyBonus is the experience multiplier applied to party members.
	PartyBonus = 1.2
)

// MaxReachableLevel is LevelFromExp(MaxExp).
var MaxReachableLevel int

// costs[L] is ExpForLevel(L); totals[L] is TotalExpForLevel(L), for 1 <= L <= MaxLevel.
var costs, totals [MaxLevel + 1]float64

func init() {
	sum := 0.0
	for l := 1; l <= MaxLevel; l++ {
		costs[l] = math.Floor(BaseExp * math.Pow(ExpMultiplier, float64(l-1)))
		sum += costs[l]
		if l > 1 {
			totals[l] = sum
		}
	}
	MaxReachableLevel = LevelFromExp(MaxExp)
}

// ExpForLevel returns the experience cost of level, floor(100 × 1.5^(level−1)).
//
// Precondition: 1 <= level <= MaxLevel; out-of-range levels are clamped.
func ExpForLevel(level int) float64 {
	return costs[clampLevel(level)]
}

// TotalExpForLevel returns the cumulative experience at which a character reaches level.
// Level 1 is free; every later level L requires the costs of levels 1 through L.
//
// Precondition: 1 <= level <= MaxLevel; out-of-range levels are clamped.
// Postcondition: TotalExpForLevel(L+1) > TotalExpForLevel(L) for all L < MaxLevel.
func TotalExpForLevel(level int) float64 {
	return totals[clampLevel(level)]
}

// LevelFromExp returns the largest level L <= MaxLevel with TotalExpForLevel(L) <= exp.
//
// Postcondition: result is in [1, MaxLevel] and non-decreasing in exp.
func LevelFromExp(exp int64) int {
	e := float64(exp)
	level := 1
	for level < MaxLevel && totals[level+1] <= e {
		level++
	}
	return level
}

func clampLevel(level int) int {
	return min(max(level, 1), MaxLevel)
}
