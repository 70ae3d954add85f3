// Package format renders chatbot answers from catalog records and the
// knowledge base.
package format

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/knowledge"
	"nft-gallery-agent/internal/pricefeed"
)

const timestampLayout = "02 Jan 2006 15:04 MST"

// RateSource provides the USD rate of the collection currency. Rate must
// always return a usable quote.
type RateSource interface {
	Rate(ctx context.Context) pricefeed.Quote
}

type Formatter struct {
	rates   RateSource
	records []domain.CatalogRecord
}

// New returns a Formatter. records back the collection overview and are
// listed in the given order.
func New(rates RateSource, records []domain.CatalogRecord) (*Formatter, error) {
	if rates == nil {
		return nil, errors.New("format: rate source must not be nil")
	}
	return &Formatter{rates: rates, records: records}, nil
}

// Format answers from rules alone. ok is false when neither a record nor a
// canned block applies, in which case the caller decides between the AI
// fallback and Help.
func (f *Formatter) Format(ctx context.Context, rec *domain.CatalogRecord, in domain.Intent, lang domain.Language) (string, bool) {
	if rec != nil {
		switch in {
		case domain.IntentPrice:
			return f.price(ctx, *rec, lang), true
		case domain.IntentRarity:
			return rarity(*rec, lang), true
		case domain.IntentPurchase:
			block, _ := knowledge.Block(domain.IntentPurchase, lang)
			return details(*rec, lang) + "\n\n" + block, true
		default:
			return details(*rec, lang), true
		}
	}

	switch in {
	case domain.IntentMuseum, domain.IntentTechnical, domain.IntentPurchase:
		return knowledge.Block(in, lang)
	case domain.IntentCollection:
		return f.overview(lang), true
	}
	return "", false
}

// Help is the default answer when nothing resolved.
func (f *Formatter) Help(lang domain.Language) string {
	return knowledge.Help(lang)
}

func (f *Formatter) price(ctx context.Context, rec domain.CatalogRecord, lang domain.Language) string {
	t := texts(lang)
	name := orNA(rec.Name, lang)
	price, ok := parsePrice(rec.Price)
	if !ok {
		return fmt.Sprintf(t.priceUnknown, name)
	}

	q := f.rates.Rate(ctx)
	amount := PriceWithUSD(rec.Price, rec.CurrencySymbol, price, q.USD)
	rateNote := fmt.Sprintf(t.rateLine, orNA(rec.CurrencySymbol, lang), formatDecimal(q.USD), Timestamp(q.At))
	if q.Fallback {
		rateNote += " " + t.rateEstimated
	}
	return fmt.Sprintf(t.priceLine, name, amount) + "\n" + rateNote
}

// PriceWithUSD renders "<price> <symbol> (~$<usd> USD)".
func PriceWithUSD(literal, symbol string, price, rate float64) string {
	return fmt.Sprintf("%s %s (~$%s USD)", strings.TrimSpace(literal), strings.TrimSpace(symbol), formatDecimal(price*rate))
}

func details(rec domain.CatalogRecord, lang domain.Language) string {
	t := texts(lang)
	lines := []string{
		"✨ " + orNA(rec.Name, lang),
		orNA(rec.Description, lang),
		t.priceLabel + ": " + nativePrice(rec, lang),
		t.contractLabel + ": " + orNA(rec.ContractAddress, lang),
	}
	return strings.Join(lines, "\n")
}

func rarity(rec domain.CatalogRecord, lang domain.Language) string {
	t := texts(lang)
	value := ""
	for _, a := range rec.Attributes {
		if strings.EqualFold(a.TraitType, "rarity") {
			value = a.ValueString()
			break
		}
	}
	return fmt.Sprintf(t.rarityLine, orNA(rec.Name, lang), orNA(value, lang))
}

func (f *Formatter) overview(lang domain.Language) string {
	t := texts(lang)
	lines := []string{fmt.Sprintf(t.overviewHeader, knowledge.CollectionName, len(f.records))}
	for _, r := range f.records {
		lines = append(lines, fmt.Sprintf("• %s (%s): %s", orNA(r.Name, lang), r.ID, nativePrice(r, lang)))
	}
	return strings.Join(lines, "\n")
}

func nativePrice(rec domain.CatalogRecord, lang domain.Language) string {
	if _, ok := parsePrice(rec.Price); !ok {
		return texts(lang).notAvailable
	}
	return strings.TrimSpace(rec.Price + " " + rec.CurrencySymbol)
}

// parsePrice accepts non-negative decimal strings.
func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// formatDecimal keeps between 2 and 4 fractional digits.
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	dot := strings.IndexByte(s, '.')
	for len(s)-dot-1 > 2 && strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s
}

func orNA(s string, lang domain.Language) string {
	if strings.TrimSpace(s) == "" {
		return texts(lang).notAvailable
	}
	return s
}

// Timestamp renders t the way price quotes are stamped.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
