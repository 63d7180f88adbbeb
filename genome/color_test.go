package genome

import "testing"

func TestPredatorColor(t *testing.T) {
	b := DefaultBounds()
	g := Genome{Metabolism: 0.5, ReproThreshold: 30, SenseRange: 3, Size: 1.0, Photosynthesis: 0.5, Adhesion: 0.2}

	got := g.Color(b, true)
	want := RGB{128, 0, 128}
	if got != want {
		t.Errorf("predator color = %+v, want %+v", got, want)
	}
}

func TestDominantTraitTint(t *testing.T) {
	b := DefaultBounds()

	// Minimum size so no darkening interferes.
	base := Genome{Metabolism: 2.0, ReproThreshold: 10, SenseRange: 1, Size: 1.0, Photosynthesis: 0.0, Adhesion: 0.0}

	cases := []struct {
		name   string
		mutate func(*Genome)
		want   RGB
	}{
		{"breeder red", func(g *Genome) { g.ReproThreshold = 60 }, RGB{255, 50, 50}},
		{"scout green", func(g *Genome) { g.SenseRange = 5 }, RGB{50, 255, 50}},
		{"survivor blue", func(g *Genome) { g.Metabolism = 0.1 }, RGB{50, 50, 255}},
		{"producer yellow", func(g *Genome) { g.Photosynthesis = 1.0 }, RGB{255, 255, 0}},
	}
	for _, c := range cases {
		g := base
		c.mutate(&g)
		if got := g.Color(b, false); got != c.want {
			t.Errorf("%s: color = %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestSizeDarkensColor(t *testing.T) {
	b := DefaultBounds()
	small := Genome{Metabolism: 1.0, ReproThreshold: 60, SenseRange: 1, Size: b.Size.Min, Photosynthesis: 0.0}
	big := small
	big.Size = b.Size.Max

	cs, cb := small.Color(b, false), big.Color(b, false)
	if cb.R >= cs.R {
		t.Errorf("max size should darken red channel: small %d, big %d", cs.R, cb.R)
	}
}
