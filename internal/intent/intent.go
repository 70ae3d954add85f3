// Package intent classifies chat messages by keyword tables.
package intent

import (
	"strings"
	"unicode"

	"nft-gallery-agent/internal/domain"
)

// Rule maps an intent to the keywords that trigger it. A keyword matches
// when it appears anywhere in the lower-cased text.
type Rule struct {
	Intent   domain.Intent
	Keywords []string
}

// rules are evaluated top-down; the first rule with a matching keyword wins.
var rules = []Rule{
	{Intent: domain.IntentPrice, Keywords: []string{
		"precio", "price", "cost", "cuánto cuesta", "cuanto cuesta", "cuánto es", "cuanto es", "vale", "valor", "worth", "how much", "usd", "dólar", "dolar",
	}},
	{Intent: domain.IntentMuseum, Keywords: []string{
		"museo", "museum", "horario", "hours", "dirección", "direccion", "address", "ubicación", "ubicacion",
		"location", "dónde está", "donde esta", "where is", "visitar", "visit", "playa del carmen", "contacto", "contact",
	}},
	{Intent: domain.IntentPurchase, Keywords: []string{
		"comprar", "compra", "buy", "purchase", "mint", "adquirir", "wallet", "billetera", "pagar", "pay",
	}},
	{Intent: domain.IntentRarity, Keywords: []string{
		"rareza", "rarity", "raro", "rare", "legendario", "legendary", "épico", "epico", "epic", "exclusiv",
	}},
	{Intent: domain.IntentArtist, Keywords: []string{
		"artista", "artist", "autor", "author", "creador", "creator", "quién hizo", "quien hizo", "who made",
	}},
	{Intent: domain.IntentTechnical, Keywords: []string{
		"blockchain", "contrato", "contract", "polygon", "token", "ipfs", "qué es un nft", "que es un nft", "what is an nft",
		"smart", "erc-721", "erc721", "gas fee", "cripto", "crypto",
	}},
	{Intent: domain.IntentCollection, Keywords: []string{
		"colección", "coleccion", "collection", "catálogo", "catalogo", "catalog", "galería", "galeria", "gallery",
		"todos", "all nfts", "cuántos", "cuantos", "how many", "disponibles", "available",
	}},
}

// Rules returns a copy of the classification table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Intent: r.Intent, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Classify returns the intent of text, or IntentGeneral when no keyword
// matches.
func Classify(text string) domain.Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Intent
			}
		}
	}
	return domain.IntentGeneral
}

var (
	spanishMarkers = map[string]struct{}{
		"el": {}, "la": {}, "los": {}, "las": {}, "de": {}, "del": {}, "que": {}, "qué": {}, "es": {},
		"un": {}, "una": {}, "y": {}, "en": {}, "por": {}, "para": {}, "cómo": {}, "como": {},
		"dónde": {}, "donde": {}, "cuánto": {}, "cuanto": {}, "cuál": {}, "hola": {}, "gracias": {},
		"precio": {}, "museo": {}, "quiero": {}, "puedo": {}, "está": {}, "esta": {},
	}
	englishMarkers = map[string]struct{}{
		"the": {}, "an": {}, "of": {}, "what": {}, "is": {}, "are": {}, "and": {}, "in": {},
		"for": {}, "how": {}, "where": {}, "which": {}, "who": {}, "hello": {}, "hi": {}, "thanks": {},
		"price": {}, "museum": {}, "want": {}, "can": {}, "much": {}, "does": {}, "do": {},
	}
)

// DetectLanguage counts Spanish and English marker words and returns the
// language with more hits. Inverted punctuation and Spanish-only letters
// count as Spanish markers. Ties resolve to Spanish.
func DetectLanguage(text string) domain.Language {
	lower := strings.ToLower(text)
	es, en := 0, 0
	for _, r := range lower {
		switch r {
		case '¿', '¡', 'ñ':
			es++
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, ok := spanishMarkers[w]; ok {
			es++
		}
		if _, ok := englishMarkers[w]; ok {
			en++
		}
	}
	if en > es {
		return domain.LanguageEN
	}
	return domain.LanguageES
}
