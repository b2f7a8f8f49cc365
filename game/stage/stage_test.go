package stage

import (
	"strings"
	"testing"
)

func TestDefaultTableCoversEveryActor(t *testing.T) {
	table := Default()
	for _, a := range Actors() {
		s, ok := table.For(a)
		if !ok {
			t.Fatalf("no stage for %s", a)
		}
		if s.Actor != a || s.Rows < 5 || s.TimeLimit <= 0 {
			t.Errorf("stage %s = %+v", a, s)
		}
	}
}

func TestStarsFor(t *testing.T) {
	s := Stage{Stars: [3]int{50, 65, 80}}
	tests := []struct {
		percent, want int
	}{
		{0, 0}, {49, 0}, {50, 1}, {64, 1}, {65, 2}, {80, 3}, {100, 3},
	}
	for _, tt := range tests {
		if got := s.StarsFor(tt.percent); got != tt.want {
			t.Errorf("StarsFor(%d) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestParseActor(t *testing.T) {
	if a, ok := ParseActor("midori"); !ok || a != Midori {
		t.Errorf("ParseActor(midori) = %v, %v", a, ok)
	}
	if _, ok := ParseActor("Yuuka"); ok {
		t.Error("unknown actor parsed")
	}
	if Actor(9).String() != "Actor(9)" {
		t.Errorf("String = %q", Actor(9).String())
	}
}

const oneStage = `
  - actor: %s
    rows: 20
    cols: 30
    time_limit: 60
    stars: [40, 60, 80]
    half_spawn_area: 2
    boss_speed: 3
    bullet_speed: 5
    fire_interval: 2
    patterns: {ring: 1}
`

func table(actors ...string) string {
	var b strings.Builder
	b.WriteString("stages:\n")
	for _, a := range actors {
		b.WriteString(strings.ReplaceAll(oneStage, "%s", a))
	}
	return b.String()
}

func TestParseRejectsBadTables(t *testing.T) {
	all := []string{"Aris", "Momoi", "Midori", "Yuzu"}
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"syntax", "stages: [", "parse"},
		{"missing actor", table("Aris", "Momoi", "Midori"), "no stage for Yuzu"},
		{"duplicate", table(append(all, "Aris")...), "duplicate"},
		{"unknown", table("Aris", "Hina"), "unknown actor"},
		{"stars", strings.Replace(table(all...), "[40, 60, 80]", "[60, 40, 80]", 1), "stars"},
		{"spawn area", strings.Replace(table(all...), "half_spawn_area: 2", "half_spawn_area: 3", 1), "too small"},
		{"pattern", strings.Replace(table(all...), "{ring: 1}", "{laser: 1}", 1), "unknown pattern"},
		{"no weight", strings.Replace(table(all...), "{ring: 1}", "{ring: 0}", 1), "no bullet pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := (Decoder{}).Decode([]byte(table(all...))); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}
}
