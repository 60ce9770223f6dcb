package points

import "zealAPI/internal/types/user"

type tier struct {
	min   float64
	level user.Level
}

// Highest threshold first.
var tiers = []tier{
	{4000, user.LevelMaster},
	{3000, user.LevelExpert},
	{2000, user.LevelAdvanced},
	{1000, user.LevelIntermediate},
	{0, user.LevelBeginner},
}

func LevelFor(points float64) user.Level {
	for _, t := range tiers {
		if points >= t.min {
			return t.level
		}
	}
	return user.LevelBeginner
}
