package stimulus

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/focuslab/internal/difficulty"
)

// IconPool lists the 48 card icons, most distinct first. Early levels only
// draw from the head of the pool.
var IconPool = []string{
	"heart", "star", "sun", "moon", "cloud", "zap", "flame", "droplets",
	"music", "camera", "gift", "key", "lock", "bell", "bookmark", "flag",
	"anchor", "compass", "crown", "feather", "gem", "leaf", "snowflake", "umbrella",
	"apple", "cherry", "fish", "bird", "bug", "cat", "dog", "flower",
	"plane", "rocket", "ship", "train", "bike", "mountain", "tree", "waves",
	"lightbulb", "palette", "scissors", "hammer", "wrench", "shield", "trophy", "medal",
}

// IconSwap generates memorize-then-find-the-change card grids.
type IconSwap struct {
	r *rand.Rand
}

var _ Generator = (*IconSwap)(nil)

// NewIconSwap creates an icon-swap generator.
func NewIconSwap(r *rand.Rand) *IconSwap {
	return &IconSwap{r: r}
}

func (g *IconSwap) Generate(level difficulty.Level, params difficulty.Params) Stimulus {
	poolSize := min(max(params.IconPoolSize, 1), len(IconPool))
	available := IconPool[:poolSize]

	cardCount := min(max(params.CardCount, 1), len(available))
	perm := g.r.Perm(len(available))[:cardCount]

	original := make([]string, cardCount)
	for i, idx := range perm {
		original[i] = available[idx]
	}
	swap := g.r.IntN(cardCount)

	var unused []string
	for _, icon := range available {
		if !slices.Contains(original, icon) {
			unused = append(unused, icon)
		}
	}

	var replacement string
	if len(unused) > 0 {
		replacement = unused[g.r.IntN(len(unused))]
	} else {
		// Level pool exhausted: any icon other than the one being replaced.
		replacement = SampleWithout(g.r, IconPool, original[swap], 1)[0]
	}

	modified := slices.Clone(original)
	modified[swap] = replacement

	return Stimulus{
		Kind:          difficulty.IconSwap,
		Level:         level,
		OriginalIcons: original,
		ModifiedIcons: modified,
		SwapIndex:     swap,
	}
}
