package stimulus

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/abhisek/focuslab/internal/difficulty"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestSampleWithout_ExcludesTarget(t *testing.T) {
	pool := []int{0, 1, 2, 3, 4, 5, 6, 7}
	r := seeded()
	for i := 0; i < 200; i++ {
		target := r.IntN(8)
		got := SampleWithout(r, pool, target, 4)
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		if slices.Contains(got, target) {
			t.Fatalf("sample %v contains excluded %d", got, target)
		}
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		if len(slices.Compact(sorted)) != len(got) {
			t.Fatalf("sample %v has duplicates", got)
		}
	}
}

func TestSampleWithout_Saturates(t *testing.T) {
	pool := []int{0, 1, 2, 3, 4, 5, 6, 7}
	got := SampleWithout(seeded(), pool, 3, 20)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	slices.Sort(got)
	want := []int{0, 1, 2, 4, 5, 6, 7}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := SampleWithout(seeded(), pool, 3, -1); len(got) != 0 {
		t.Errorf("negative n: got %v, want empty", got)
	}
}

func TestSampleWithout_Deterministic(t *testing.T) {
	pool := []string{"a", "b", "c", "d", "e"}
	a := SampleWithout(rand.New(rand.NewPCG(7, 7)), pool, "c", 3)
	b := SampleWithout(rand.New(rand.NewPCG(7, 7)), pool, "c", 3)
	if !slices.Equal(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestRing_Generate(t *testing.T) {
	tests := []struct {
		kind    difficulty.GameKind
		level   int
		answers []string
	}{
		{difficulty.DividedAttention, 1, []string{"car", "truck"}},
		{difficulty.DividedAttention, 20, []string{"car", "truck"}},
		{difficulty.DoubleDecision, 10, []string{"left", "right"}},
	}

	for _, tt := range tests {
		g := NewRing(tt.kind, seeded())
		p := difficulty.MustParamsFor(tt.level, tt.kind)
		for i := 0; i < 50; i++ {
			s := g.Generate(p.Level, p)
			if s.Kind != tt.kind || s.Level != p.Level {
				t.Fatalf("%s: kind/level = %s/%d", tt.kind, s.Kind, s.Level)
			}
			if s.PeripheralPosition < 0 || s.PeripheralPosition >= RingSlots {
				t.Fatalf("%s: target slot %d out of range", tt.kind, s.PeripheralPosition)
			}
			if len(s.DistractorPositions) != p.DistractorCount {
				t.Fatalf("%s L%d: %d distractors, want %d", tt.kind, tt.level, len(s.DistractorPositions), p.DistractorCount)
			}
			if slices.Contains(s.DistractorPositions, s.PeripheralPosition) {
				t.Fatalf("%s: distractors %v include target %d", tt.kind, s.DistractorPositions, s.PeripheralPosition)
			}
			if !slices.Contains(tt.answers, s.CentralAnswer()) {
				t.Fatalf("%s: central answer %q not in %v", tt.kind, s.CentralAnswer(), tt.answers)
			}
			if !slices.Contains(CentralChoices(tt.kind), s.CentralAnswer()) {
				t.Fatalf("%s: answer %q not offered", tt.kind, s.CentralAnswer())
			}
		}
	}
}

func TestRing_DistractorRequestExceedsSlots(t *testing.T) {
	g := NewRing(difficulty.DividedAttention, seeded())
	p := difficulty.MustParamsFor(20, difficulty.DividedAttention)
	p.DistractorCount = 12

	s := g.Generate(p.Level, p)
	if len(s.DistractorPositions) != RingSlots-1 {
		t.Errorf("distractors = %d, want %d", len(s.DistractorPositions), RingSlots-1)
	}
}

func TestIconSwap_Generate(t *testing.T) {
	g := NewIconSwap(seeded())
	for _, level := range []int{1, 6, 12, 20} {
		p := difficulty.MustParamsFor(level, difficulty.IconSwap)
		for i := 0; i < 50; i++ {
			s := g.Generate(p.Level, p)
			if len(s.OriginalIcons) != p.CardCount || len(s.ModifiedIcons) != p.CardCount {
				t.Fatalf("L%d: %d/%d cards, want %d", level, len(s.OriginalIcons), len(s.ModifiedIcons), p.CardCount)
			}
			for j := range s.OriginalIcons {
				changed := s.OriginalIcons[j] != s.ModifiedIcons[j]
				if changed != (j == s.SwapIndex) {
					t.Fatalf("L%d: card %d changed=%v, swap index %d", level, j, changed, s.SwapIndex)
				}
			}
			if slices.Contains(s.OriginalIcons, s.ModifiedIcons[s.SwapIndex]) {
				t.Fatalf("L%d: replacement %q already on the board", level, s.ModifiedIcons[s.SwapIndex])
			}
			for _, icon := range s.ModifiedIcons {
				if !slices.Contains(IconPool[:p.IconPoolSize], icon) {
					t.Fatalf("L%d: icon %q outside level pool", level, icon)
				}
			}
		}
	}
}

func TestIconSwap_FallsBackWhenPoolExhausted(t *testing.T) {
	g := NewIconSwap(seeded())
	p := difficulty.MustParamsFor(1, difficulty.IconSwap)
	p.IconPoolSize = 4
	p.CardCount = 4

	for i := 0; i < 50; i++ {
		s := g.Generate(p.Level, p)
		orig := s.OriginalIcons[s.SwapIndex]
		repl := s.ModifiedIcons[s.SwapIndex]
		if repl == orig {
			t.Fatalf("replacement equals original icon %q", orig)
		}
		if !slices.Contains(IconPool, repl) {
			t.Fatalf("replacement %q not in the icon pool", repl)
		}
	}
}

func TestIconPool(t *testing.T) {
	if len(IconPool) != 48 {
		t.Fatalf("len(IconPool) = %d, want 48", len(IconPool))
	}
	sorted := slices.Clone(IconPool)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != 48 {
		t.Error("IconPool has duplicate entries")
	}
}

func TestForKind(t *testing.T) {
	for _, k := range []difficulty.GameKind{difficulty.DividedAttention, difficulty.DoubleDecision, difficulty.IconSwap} {
		if _, err := ForKind(k, seeded()); err != nil {
			t.Errorf("ForKind(%s) error: %v", k, err)
		}
	}
	if _, err := ForKind(difficulty.TenseRewrite, seeded()); err == nil {
		t.Error("ForKind(tense-rewrite) expected error")
	}
}
