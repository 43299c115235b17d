package cefr

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		current Level
		scores  []float64
		want    Level
		dir     Direction
	}{
		{"sub-tier step up", MustParse("B1", "well-placed"), []float64{8, 9, 8}, MustParse("B1", "advanced"), Up},
		{"tier step up", MustParse("B1", "advanced"), []float64{9, 9, 9}, MustParse("B2", "novice"), Up},
		{"floor", MustParse("A1", "novice"), []float64{3, 2}, MustParse("A1", "novice"), Unchanged},
		{"ceiling", MustParse("C2", "advanced"), []float64{10, 10, 10}, MustParse("C2", "advanced"), Unchanged},
		{"sub-tier step down", MustParse("A2", "well-placed"), []float64{4, 4}, MustParse("A2", "novice"), Down},
		{"tier step down", MustParse("B2", "novice"), []float64{7, 3, 1}, MustParse("B1", "advanced"), Down},
		{"only the tail counts", MustParse("B1", "novice"), []float64{2, 2, 8, 8, 8}, MustParse("B1", "well-placed"), Up},
		{"two high scores are not enough", MustParse("B1", "novice"), []float64{9, 9}, MustParse("B1", "novice"), Unchanged},
		{"one low score is not enough", MustParse("B1", "novice"), []float64{9, 2}, MustParse("B1", "novice"), Unchanged},
		{"no scores", MustParse("C1", "advanced"), nil, MustParse("C1", "advanced"), Unchanged},
		{"middle scores", MustParse("C1", "novice"), []float64{5, 6, 7, 6}, MustParse("C1", "novice"), Unchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.current, tt.scores)
			if got.Level != tt.want {
				t.Errorf("Level = %s, want %s", got.Level, tt.want)
			}
			if got.Direction != tt.dir {
				t.Errorf("Direction = %s, want %s", got.Direction, tt.dir)
			}
			if got.Changed != (tt.dir != Unchanged) {
				t.Errorf("Changed = %v with direction %s", got.Changed, tt.dir)
			}
		})
	}
}

func TestRungRoundTrip(t *testing.T) {
	prev := -1
	for r := 0; r < Rungs; r++ {
		l := FromRung(r)
		if l.Rung() != r {
			t.Errorf("FromRung(%d).Rung() = %d", r, l.Rung())
		}
		if l.Rung() <= prev {
			t.Errorf("rung %d not increasing", r)
		}
		prev = l.Rung()
	}
	if FromRung(-4) != Bottom || FromRung(40) != Top {
		t.Error("FromRung does not saturate")
	}
	if Rungs != 18 {
		t.Errorf("Rungs = %d, want 18", Rungs)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		tier, sub string
		want      string
		wantErr   bool
	}{
		{"B1", "well-placed", "B1 well-placed", false},
		{" c2 ", "ADVANCED", "C2 advanced", false},
		{"a2", "", "A2 novice", false},
		{"D1", "novice", "", true},
		{"B1", "expert", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.tier, tt.sub)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q, %q) succeeded, want error", tt.tier, tt.sub)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q, %q): %v", tt.tier, tt.sub, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q, %q) = %s, want %s", tt.tier, tt.sub, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := MustParse("B2", "advanced").Label(); got != "B2 (upper range)" {
		t.Errorf("Label = %q", got)
	}
}
