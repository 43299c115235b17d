package difficulty

import (
	"errors"
	"testing"
	"time"
)

func TestParamsFor_Endpoints(t *testing.T) {
	tests := []struct {
		kind      GameKind
		level     int
		wantFlash time.Duration
		wantDist  float64
		wantDistr int
	}{
		{DividedAttention, 1, 600 * time.Millisecond, 0.25, 0},
		{DividedAttention, 20, 150 * time.Millisecond, 0.45, 6},
		{DoubleDecision, 1, 800 * time.Millisecond, 0.30, 0},
		{DoubleDecision, 20, 200 * time.Millisecond, 0.45, 6},
	}
	for _, tt := range tests {
		p, err := ParamsFor(tt.level, tt.kind)
		if err != nil {
			t.Fatalf("ParamsFor(%d, %s): %v", tt.level, tt.kind, err)
		}
		if p.FlashDuration != tt.wantFlash {
			t.Errorf("%s L%d flash = %v, want %v", tt.kind, tt.level, p.FlashDuration, tt.wantFlash)
		}
		if diff := p.PeripheralDistance - tt.wantDist; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s L%d distance = %f, want %f", tt.kind, tt.level, p.PeripheralDistance, tt.wantDist)
		}
		if p.DistractorCount != tt.wantDistr {
			t.Errorf("%s L%d distractors = %d, want %d", tt.kind, tt.level, p.DistractorCount, tt.wantDistr)
		}
	}
}

func TestParamsFor_MonotonicFlash(t *testing.T) {
	for _, kind := range []GameKind{DividedAttention, DoubleDecision} {
		prev := MustParamsFor(1, kind)
		for lvl := 2; lvl <= MaxLevel; lvl++ {
			p := MustParamsFor(lvl, kind)
			if p.FlashDuration >= prev.FlashDuration {
				t.Errorf("%s: flash at L%d (%v) not below L%d (%v)", kind, lvl, p.FlashDuration, lvl-1, prev.FlashDuration)
			}
			if p.PeripheralDistance <= prev.PeripheralDistance {
				t.Errorf("%s: distance at L%d not above L%d", kind, lvl, lvl-1)
			}
			if p.DistractorCount < prev.DistractorCount {
				t.Errorf("%s: distractors decreased at L%d", kind, lvl)
			}
			prev = p
		}
	}
}

func TestParamsFor_Deterministic(t *testing.T) {
	for _, kind := range []GameKind{DividedAttention, DoubleDecision, IconSwap} {
		for lvl := MinLevel; lvl <= MaxLevel; lvl++ {
			a := MustParamsFor(lvl, kind)
			b := MustParamsFor(lvl, kind)
			if a != b {
				t.Errorf("%s L%d not reproducible: %+v vs %+v", kind, lvl, a, b)
			}
			if int(a.Level) != lvl {
				t.Errorf("%s L%d reports level %d", kind, lvl, a.Level)
			}
		}
	}
}

func TestParamsFor_Clamps(t *testing.T) {
	for _, kind := range []GameKind{DividedAttention, DoubleDecision, IconSwap} {
		if MustParamsFor(0, kind) != MustParamsFor(1, kind) {
			t.Errorf("%s: ParamsFor(0) != ParamsFor(1)", kind)
		}
		if MustParamsFor(-7, kind) != MustParamsFor(1, kind) {
			t.Errorf("%s: ParamsFor(-7) != ParamsFor(1)", kind)
		}
		if MustParamsFor(25, kind) != MustParamsFor(20, kind) {
			t.Errorf("%s: ParamsFor(25) != ParamsFor(20)", kind)
		}
	}
}

func TestParamsFor_IconSwap(t *testing.T) {
	first := MustParamsFor(1, IconSwap)
	last := MustParamsFor(20, IconSwap)

	if first.MemorizeTime != 3000*time.Millisecond || last.MemorizeTime != 500*time.Millisecond {
		t.Errorf("memorize = %v..%v, want 3s..500ms", first.MemorizeTime, last.MemorizeTime)
	}
	if first.BlinkDuration != 400*time.Millisecond || last.BlinkDuration != 210*time.Millisecond {
		t.Errorf("blink = %v..%v, want 400ms..210ms", first.BlinkDuration, last.BlinkDuration)
	}
	if first.IconPoolSize != 12 || last.IconPoolSize != 40 {
		t.Errorf("icon pool = %d..%d, want 12..40", first.IconPoolSize, last.IconPoolSize)
	}
	if first.FlashDuration != 0 || first.DistractorCount != 0 {
		t.Errorf("icon swap should not carry ring parameters: %+v", first)
	}

	cards := map[int]int{1: 4, 5: 4, 6: 5, 9: 5, 10: 6, 13: 6, 14: 7, 17: 7, 18: 8, 20: 8}
	for lvl, want := range cards {
		if got := MustParamsFor(lvl, IconSwap).CardCount; got != want {
			t.Errorf("card count at L%d = %d, want %d", lvl, got, want)
		}
	}
}

func TestParamsFor_NoTable(t *testing.T) {
	for _, k := range AllKinds {
		_, err := ParamsFor(5, k)
		if k.Timed() {
			if err != nil {
				t.Errorf("ParamsFor(%s) err = %v", k, err)
			}
			continue
		}
		if !k.Language() {
			t.Errorf("%s is neither timed nor a language game", k)
		}
		if !errors.Is(err, ErrNoTable) {
			t.Errorf("ParamsFor(%s) err = %v, want ErrNoTable", k, err)
		}
	}
}

func TestParseGameKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseGameKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseGameKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseGameKind("tetris"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
