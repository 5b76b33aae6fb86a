package mediator

import (
	"math"
	"sort"
	"strings"

	"github.com/arnavshah/odysai-api-go/pkg/models"
)

const dominantEmotionLimit = 3

// DefaultConsensus is the band reported for a room with no surveys
func DefaultConsensus() models.ConsensusBand {
	return models.ConsensusBand{
		Budget:            models.BudgetMedium,
		WakeWindow:        models.WakeWindow{Start: "08:00", End: "09:00"},
		DominantEmotions:  []string{},
		SharedConstraints: []string{},
	}
}

// DeriveConsensus reduces profiles to a single consensus band
func DeriveConsensus(profiles []models.PreferenceProfile) models.ConsensusBand {
	if len(profiles) == 0 {
		return DefaultConsensus()
	}

	budgetSum := 0
	earliest, latest := profiles[0].WakeMinutes, profiles[0].WakeMinutes
	for _, p := range profiles {
		budgetSum += p.BudgetScore
		earliest = min(earliest, p.WakeMinutes)
		latest = max(latest, p.WakeMinutes)
	}
	avgBudget := float64(budgetSum) / float64(len(profiles))

	emotions := newTally()
	constraints := newTally()
	for _, p := range profiles {
		for _, e := range p.Emotions {
			emotions.add(strings.ToLower(e), p.MemberID)
		}
		for _, c := range distinctFolded(p.Constraints) {
			constraints.add(c, p.MemberID)
		}
	}

	return models.ConsensusBand{
		Budget: ScoreToBudget(int(math.Round(avgBudget))),
		WakeWindow: models.WakeWindow{
			Start: MinutesToTime(max(0, earliest-30)),
			End:   MinutesToTime(min(minutesInDay-1, latest+60)),
		},
		DominantEmotions:  emotions.top(dominantEmotionLimit),
		SharedConstraints: constraints.shared(),
	}
}

// tally counts case-folded values and remembers who mentioned them,
// keeping first-seen key order so output is deterministic.
type tally struct {
	order   []string
	counts  map[string]int
	members map[string][]string
}

func newTally() *tally {
	return &tally{
		counts:  make(map[string]int),
		members: make(map[string][]string),
	}
}

func (t *tally) add(key, memberID string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
	t.members[key] = append(t.members[key], memberID)
}

// top returns up to n keys by descending count, ties in first-seen order
func (t *tally) top(n int) []string {
	keys := append([]string(nil), t.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.counts[keys[i]] > t.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	if keys == nil {
		return []string{}
	}
	return keys
}

// shared returns keys counted more than once, in first-seen order
func (t *tally) shared() []string {
	out := []string{}
	for _, k := range t.order {
		if t.counts[k] > 1 {
			out = append(out, k)
		}
	}
	return out
}

// distinctFolded lowercases values and drops repeats within one list
func distinctFolded(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
