package plans

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Plan
		ok   bool
	}{
		{"free", PlanFree, true},
		{"Gratis", PlanFree, true},
		{"GRATUITA", PlanFree, true},
		{"anuncio-gratis", PlanFree, true},
		{"standard", PlanFree, true},

		{"basic", PlanBasic, true},
		{"Básica", PlanBasic, true},
		{"BASICO", PlanBasic, true},
		{"plan_basico", PlanBasic, true},
		{"  Destacado  ", PlanBasic, true},

		{"premium", PlanPremium, true},
		{"Premium  Plus", PlanPremium, true},
		{"VERIFICADO", PlanPremium, true},
		{"tienda", PlanPremium, true},
		{"VIP", PlanPremium, true},

		{"", "", false},
		{"enterprise", "", false},
		{"plan desconocido", "", false},
	}

	for _, tt := range tests {
		got, ok := Canonicalize(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Canonicalize(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanonicalize_SpellingVariantsAgree(t *testing.T) {
	variants := []string{"Básica", "basica", "BASICA", "básica", "destacado"}
	for _, v := range variants {
		got, ok := Canonicalize(v)
		if !ok || got != PlanBasic {
			t.Errorf("Canonicalize(%q) = (%q, %v), want (%q, true)", v, got, ok, PlanBasic)
		}
	}
}

func TestCanonicalOrFree(t *testing.T) {
	if got := CanonicalOrFree("no-such-plan"); got != PlanFree {
		t.Errorf("CanonicalOrFree miss = %q, want %q", got, PlanFree)
	}
	if got := CanonicalOrFree("Verificada"); got != PlanPremium {
		t.Errorf("CanonicalOrFree(Verificada) = %q, want %q", got, PlanPremium)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Básica", "basica"},
		{"  Plan   Premium ", "plan premium"},
		{"anuncio-gratis", "anuncio gratis"},
		{"premium_plus", "premium plus"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.raw); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAliasesRoundTrip(t *testing.T) {
	for _, p := range []Plan{PlanFree, PlanBasic, PlanPremium} {
		aliases := Aliases(p)
		if len(aliases) == 0 {
			t.Fatalf("no aliases registered for %q", p)
		}
		for _, alias := range aliases {
			got, ok := Canonicalize(alias)
			if !ok || got != p {
				t.Errorf("alias %q resolved to (%q, %v), want %q", alias, got, ok, p)
			}
		}
	}
}

func TestRank(t *testing.T) {
	if !(Rank(PlanPremium) > Rank(PlanBasic) && Rank(PlanBasic) > Rank(PlanFree)) {
		t.Error("tier ranking is not strictly ordered")
	}
}
