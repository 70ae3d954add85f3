// Package suggest picks quick-reply suggestions for the chat input.
package suggest

import (
	"sort"
	"strings"
	"unicode"

	"nft-gallery-agent/internal/domain"
)

const maxSuggestions = 4

type bucket struct {
	category string
	triggers []string
	// words only match as whole words, for tokens that occur inside longer
	// words ("pol" in "polygon").
	words       []string
	suggestions []domain.Suggestion
}

// buckets are checked in order against the current input.
var buckets = []bucket{
	{
		category: "price",
		triggers: []string{"precio", "price", "cost", "cuánto", "cuanto", "usd"},
		words:    []string{"pol"},
		suggestions: []domain.Suggestion{
			{ID: "price-chido", Text: "¿Cuál es el precio de CHIDO?", Priority: 10},
			{ID: "price-range", Text: "¿Cuál es la pieza más barata?", Priority: 8},
			{ID: "price-usd", Text: "¿Cuánto es en dólares?", Priority: 7},
			{ID: "price-pay", Text: "¿Con qué moneda se paga?", Priority: 5},
			{ID: "price-gas", Text: "¿Hay comisiones de gas?", Priority: 3},
		},
	},
	{
		category: "museum",
		triggers: []string{"museo", "museum", "visita", "visit", "horario", "hours", "dónde", "donde", "where"},
		suggestions: []domain.Suggestion{
			{ID: "museum-address", Text: "¿Dónde está el museo?", Priority: 10},
			{ID: "museum-hours", Text: "¿Cuál es el horario del museo?", Priority: 9},
			{ID: "museum-contact", Text: "¿Cómo contacto al museo?", Priority: 6},
			{ID: "museum-tickets", Text: "¿Cuánto cuesta la entrada?", Priority: 4},
		},
	},
	{
		category: "technical",
		triggers: []string{"blockchain", "nft", "wallet", "billetera", "contrato", "contract", "polygon", "ipfs", "mint"},
		suggestions: []domain.Suggestion{
			{ID: "tech-blockchain", Text: "¿Qué es blockchain?", Priority: 10},
			{ID: "tech-wallet", Text: "¿Qué billetera necesito?", Priority: 9},
			{ID: "tech-mint", Text: "¿Cómo hago mint de un NFT?", Priority: 8},
			{ID: "tech-network", Text: "¿En qué red está la colección?", Priority: 6},
			{ID: "tech-ipfs", Text: "¿Dónde se guardan las imágenes?", Priority: 2},
		},
	},
	{
		category: "collection",
		triggers: []string{"colección", "coleccion", "collection", "galería", "galeria", "gallery", "rareza", "rarity", "artista", "artist"},
		suggestions: []domain.Suggestion{
			{ID: "col-all", Text: "Muéstrame toda la colección", Priority: 10},
			{ID: "col-legendary", Text: "¿Cuáles son legendarias?", Priority: 9},
			{ID: "col-artist", Text: "¿Quién es el artista?", Priority: 7},
			{ID: "col-animated", Text: "¿Cuáles tienen animación?", Priority: 5},
		},
	},
}

var popular = bucket{
	category: "popular",
	suggestions: []domain.Suggestion{
		{ID: "pop-chido", Text: "Háblame de CHIDO", Priority: 10},
		{ID: "pop-price", Text: "¿Cuánto cuestan los NFTs?", Priority: 9},
		{ID: "pop-museum", Text: "¿Dónde está el museo?", Priority: 8},
		{ID: "pop-buy", Text: "¿Cómo compro un NFT?", Priority: 7},
		{ID: "pop-collection", Text: "Muéstrame la colección", Priority: 6},
	},
}

var quickActions = []domain.Suggestion{
	{ID: "qa-collection", Text: "Ver colección", Category: "quick", Priority: 4},
	{ID: "qa-prices", Text: "Precios", Category: "quick", Priority: 3},
	{ID: "qa-museum", Text: "Visitar el museo", Category: "quick", Priority: 2},
	{ID: "qa-buy", Text: "Cómo comprar", Category: "quick", Priority: 1},
}

// Suggest returns at most four suggestions for the current input, highest
// priority first. When the input is blank the latest recent message is used
// instead.
func Suggest(recent []string, input string) []domain.Suggestion {
	if strings.TrimSpace(input) == "" && len(recent) > 0 {
		input = recent[len(recent)-1]
	}
	lower := strings.ToLower(input)
	for _, b := range buckets {
		if matches(b, lower) {
			return ranked(b)
		}
	}
	return ranked(popular)
}

// QuickActions returns the fixed set of quick replies.
func QuickActions() []domain.Suggestion {
	return append([]domain.Suggestion(nil), quickActions...)
}

func matches(b bucket, lower string) bool {
	for _, t := range b.triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	if len(b.words) == 0 {
		return false
	}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, t := range b.words {
			if w == t {
				return true
			}
		}
	}
	return false
}

func ranked(b bucket) []domain.Suggestion {
	out := make([]domain.Suggestion, len(b.suggestions))
	for i, s := range b.suggestions {
		s.Category = b.category
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
