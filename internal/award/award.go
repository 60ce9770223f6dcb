// Package award grants challenge badges to users.
package award

import (
	"zealAPI/internal/types/badge"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
	"zealAPI/internal/types/user"
)

// Grant puts b on u's shelf, bumping the quantity of an existing entry.
// Callers must grant once per user per challenge closure.
func Grant(u *user.User, b *badge.Badge) {
	for i := range u.Badges {
		if u.Badges[i].BadgeID == b.ID {
			u.Badges[i].Quantity++
			return
		}
	}
	u.Badges = append(u.Badges, user.UserBadge{
		BadgeID:  b.ID,
		Name:     b.Name,
		Type:     b.Type,
		Image:    b.Image,
		Quantity: 1,
	})
}

type policy func(ranked []*progress.Record) []*progress.Record

var policies = map[challenge.BadgeCriteria]policy{
	challenge.BadgeCriteriaExclusive: func(ranked []*progress.Record) []*progress.Record {
		if len(ranked) == 0 {
			return nil
		}
		return ranked[:1]
	},
	challenge.BadgeCriteriaInclusive: func(ranked []*progress.Record) []*progress.Record {
		return ranked
	},
}

// Recipients picks who gets the badge from an already ranked list. A nil or
// unknown criteria yields nobody.
func Recipients(criteria *challenge.BadgeCriteria, ranked []*progress.Record) []*progress.Record {
	if criteria == nil {
		return nil
	}
	p, ok := policies[*criteria]
	if !ok {
		return nil
	}
	return p(ranked)
}
