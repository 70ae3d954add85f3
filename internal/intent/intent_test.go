package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nft-gallery-agent/internal/domain"
)

func TestRules_EveryKeywordClassifiesToItsIntent(t *testing.T) {
	// A keyword may be shadowed by an earlier rule; those are the only
	// acceptable mismatches.
	table := Rules()
	for i, r := range table {
		for _, kw := range r.Keywords {
			got := Classify("  " + kw + "  ")
			if got == r.Intent {
				continue
			}
			shadowed := false
			for _, earlier := range table[:i] {
				if earlier.Intent == got {
					shadowed = true
				}
			}
			require.True(t, shadowed, "keyword %q classified as %s, want %s", kw, got, r.Intent)
		}
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	table := Rules()
	table[0].Keywords[0] = "mutated"
	require.NotEqual(t, "mutated", Rules()[0].Keywords[0])
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want domain.Intent
	}{
		{"precio de CHIDO", domain.IntentPrice},
		{"How much is the Jaguar Moon?", domain.IntentPrice},
		{"dónde está el museo", domain.IntentMuseum},
		{"What are the museum hours?", domain.IntentMuseum},
		{"quiero comprar uno", domain.IntentPurchase},
		{"which one is legendary", domain.IntentRarity},
		{"quién hizo esta obra", domain.IntentArtist},
		{"qué es blockchain", domain.IntentTechnical},
		{"show me the collection", domain.IntentCollection},
		{"¿cuántos NFTs hay?", domain.IntentCollection},
		{"¿cuánto cuesta el jaguar?", domain.IntentPrice},
		{"hola", domain.IntentGeneral},
		{"", domain.IntentGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// price is evaluated before museum.
	require.Equal(t, domain.IntentPrice, Classify("price of a museum ticket"))
	// museum is evaluated before purchase even though "playa" contains "pay".
	require.Equal(t, domain.IntentMuseum, Classify("Playa del Carmen"))
}

func TestClassify_Deterministic(t *testing.T) {
	for _, text := range []string{"precio de CHIDO", "qué es blockchain", "random words"} {
		first := Classify(text)
		for i := 0; i < 50; i++ {
			require.Equal(t, first, Classify(text))
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	require.Equal(t, domain.LanguageES, DetectLanguage("dónde está el museo"))
	require.Equal(t, domain.LanguageEN, DetectLanguage("What is the price of CHIDO?"))
	require.Equal(t, domain.LanguageES, DetectLanguage("¿CHIDO?"))
	require.Equal(t, domain.LanguageEN, DetectLanguage("where is it"))
}

func TestDetectLanguage_TieIsSpanish(t *testing.T) {
	require.Equal(t, domain.LanguageES, DetectLanguage("CHIDO"))
	require.Equal(t, domain.LanguageES, DetectLanguage(""))
	require.Equal(t, domain.LanguageES, DetectLanguage("the precio"))
}
