package format

import "nft-gallery-agent/internal/domain"

type phrasebook struct {
	notAvailable   string
	priceLabel     string
	contractLabel  string
	priceLine      string
	priceUnknown   string
	rateLine       string
	rateEstimated  string
	rarityLine     string
	overviewHeader string
}

var phrasebooks = map[domain.Language]phrasebook{
	domain.LanguageES: {
		notAvailable:   "no disponible",
		priceLabel:     "Precio",
		contractLabel:  "Contrato",
		priceLine:      "💰 El precio de %s es %s",
		priceUnknown:   "El precio de %s no está disponible por ahora.",
		rateLine:       "Tipo de cambio: 1 %s = $%s USD (actualizado %s)",
		rateEstimated:  "(tasa estimada)",
		rarityLine:     "La rareza de %s es: %s",
		overviewHeader: "La %s tiene %d piezas:",
	},
	domain.LanguageEN: {
		notAvailable:   "not available",
		priceLabel:     "Price",
		contractLabel:  "Contract",
		priceLine:      "💰 The price of %s is %s",
		priceUnknown:   "The price of %s is not available right now.",
		rateLine:       "Exchange rate: 1 %s = $%s USD (updated %s)",
		rateEstimated:  "(estimated rate)",
		rarityLine:     "The rarity of %s is: %s",
		overviewHeader: "The %s has %d pieces:",
	},
}

func texts(lang domain.Language) phrasebook {
	if p, ok := phrasebooks[lang]; ok {
		return p
	}
	return phrasebooks[domain.LanguageES]
}
