package soloq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rehabot/soloqbot/riot"
)

// SoloQueue is the League-V4 queue type of ranked solo/duo.
const SoloQueue = "RANKED_SOLO_5x5"

// Unranked is displayed for players without a solo queue standing.
const Unranked = "Unranked"

var tiers = []string{
	"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
	"EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
}

const masterTier = 7

var divisions = map[string]int{"V": 0, "IV": 1, "III": 2, "II": 3, "I": 4}

var (
	lpPattern       = regexp.MustCompile(`(\d+)\s*LP`)
	divisionPattern = regexp.MustCompile(`\b(I|II|III|IV|V)\b`)
)

// Elo is a comparable ranked standing. Unranked standings have every field set to -1.
type Elo struct {
	Tier     int
	Division int
	LP       int
}

// Ranked reports whether the standing names a known tier.
func (e Elo) Ranked() bool {
	return e.Tier >= 0
}

// Less orders standings by tier, then division, then league points.
func (e Elo) Less(other Elo) bool {
	if e.Tier != other.Tier {
		return e.Tier < other.Tier
	}
	if e.Division != other.Division {
		return e.Division < other.Division
	}
	return e.LP < other.LP
}

var unranked = Elo{Tier: -1, Division: -1, LP: -1}

// ParseElo reads strings like "GOLD II - 45 LP" or "Diamond I (12 LP)".
// Master and above have no division and rank above every Diamond I.
func ParseElo(s string) Elo {
	su := strings.ToUpper(strings.TrimSpace(s))
	if su == "" || strings.Contains(su, "UNRANKED") {
		return unranked
	}

	tier := -1
	// Highest first so that GRANDMASTER is not read as MASTER.
	for i := len(tiers) - 1; i >= 0; i-- {
		if strings.Contains(su, tiers[i]) {
			tier = i
			break
		}
	}
	if tier < 0 {
		return unranked
	}

	lp := 0
	if m := lpPattern.FindStringSubmatch(su); m != nil {
		lp, _ = strconv.Atoi(m[1])
	}

	division := 0
	if tier >= masterTier {
		division = 5
	} else if m := divisionPattern.FindStringSubmatch(su); m != nil {
		division = divisions[m[1]]
	}

	return Elo{Tier: tier, Division: division, LP: lp}
}

// MaxElo returns the highest ranked entry of elos, or false when none is ranked.
func MaxElo(elos []string) (string, bool) {
	var best string
	bestElo := unranked
	for _, s := range elos {
		e := ParseElo(s)
		if !e.Ranked() {
			continue
		}
		if best == "" || bestElo.Less(e) {
			best = s
			bestElo = e
		}
	}
	return best, best != ""
}

// SoloQueueElo formats the solo queue standing found in entries.
func SoloQueueElo(entries []*riot.LeagueEntry) string {
	for _, entry := range entries {
		if entry.QueueType == SoloQueue {
			return fmt.Sprintf("%s %s - %d LP", entry.Tier, entry.Rank, entry.LeaguePoints)
		}
	}
	return Unranked
}
