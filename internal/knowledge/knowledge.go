// Package knowledge holds the static facts the chatbot answers from: the
// museum, the collection and a short blockchain explainer, in Spanish and
// English.
package knowledge

import (
	"strings"

	"nft-gallery-agent/internal/domain"
)

type Museum struct {
	Name    string
	Address string
	Hours   map[domain.Language]string
	Email   string
	Phone   string
	Website string
}

var museum = Museum{
	Name:    "Museo CHIDO de Arte Digital",
	Address: "Av. 10 Norte 145, Centro, 77710 Playa del Carmen, Quintana Roo, México",
	Hours: map[domain.Language]string{
		domain.LanguageES: "Martes a domingo, 10:00 a 20:00 (lunes cerrado)",
		domain.LanguageEN: "Tuesday to Sunday, 10:00 to 20:00 (closed on Mondays)",
	},
	Email:   "hola@museochido.mx",
	Phone:   "+52 984 000 1234",
	Website: "https://museochido.mx",
}

const (
	CollectionName = "CHIDO Cosmic Collection"
	Network        = "Polygon"
)

// MuseumInfo returns the museum facts.
func MuseumInfo() Museum { return museum }

var blocks = map[domain.Intent]map[domain.Language]string{
	domain.IntentMuseum: {
		domain.LanguageES: strings.Join([]string{
			"📍 " + museum.Name,
			"Dirección: " + museum.Address,
			"Horario: " + museum.Hours[domain.LanguageES],
			"Contacto: " + museum.Email + " · " + museum.Phone,
			"Sitio web: " + museum.Website,
		}, "\n"),
		domain.LanguageEN: strings.Join([]string{
			"📍 " + museum.Name,
			"Address: " + museum.Address,
			"Hours: " + museum.Hours[domain.LanguageEN],
			"Contact: " + museum.Email + " · " + museum.Phone,
			"Website: " + museum.Website,
		}, "\n"),
	},
	domain.IntentTechnical: {
		domain.LanguageES: "Cada pieza de la " + CollectionName + " es un NFT ERC-721 en la red " + Network + ". " +
			"Una blockchain es un registro público e inmutable: tu NFT prueba que eres dueño de la obra original, " +
			"y sus metadatos e imágenes viven en IPFS, un almacenamiento descentralizado. Los pagos se hacen en POL.",
		domain.LanguageEN: "Every piece of the " + CollectionName + " is an ERC-721 NFT on the " + Network + " network. " +
			"A blockchain is a public, immutable ledger: your NFT proves you own the original artwork, " +
			"and its metadata and media live on IPFS, a decentralized storage network. Payments are made in POL.",
	},
	domain.IntentPurchase: {
		domain.LanguageES: "Para comprar: 1) conecta tu billetera (MetaMask u otra compatible) en la red " + Network + ", " +
			"2) abre la página de la pieza que te guste, 3) pulsa \"Mint\" y confirma la transacción en POL. " +
			"El NFT llega a tu billetera en cuanto se confirma el bloque.",
		domain.LanguageEN: "To buy: 1) connect your wallet (MetaMask or any compatible wallet) on the " + Network + " network, " +
			"2) open the page of the piece you like, 3) press \"Mint\" and confirm the transaction in POL. " +
			"The NFT lands in your wallet as soon as the block is confirmed.",
	},
	domain.IntentRarity: {
		domain.LanguageES: "Las piezas tienen cuatro niveles de rareza: Common, Rare, Epic y Legendary. " +
			"Las Legendary son ediciones únicas con animación.",
		domain.LanguageEN: "Pieces come in four rarity tiers: Common, Rare, Epic and Legendary. " +
			"Legendary pieces are one-of-one editions with animation.",
	},
	domain.IntentArtist: {
		domain.LanguageES: "La colección fue creada por el colectivo de artistas digitales del " + museum.Name +
			", inspirado en el folclor de Quintana Roo y la ciencia ficción.",
		domain.LanguageEN: "The collection was created by the digital artist collective of the " + museum.Name +
			", inspired by Quintana Roo folklore and science fiction.",
	},
}

// Block returns the canned answer for an intent. ok is false for intents
// that have no static answer.
func Block(in domain.Intent, lang domain.Language) (string, bool) {
	byLang, ok := blocks[in]
	if !ok {
		return "", false
	}
	text, ok := byLang[lang]
	if !ok {
		text, ok = byLang[domain.LanguageES]
	}
	return text, ok
}

var fallbacks = map[domain.Intent]map[domain.Language]string{
	domain.IntentPrice: {
		domain.LanguageES: "Los precios de la colección van de 0.25 a 0.75 POL. Dime el nombre de una pieza y te doy su precio exacto.",
		domain.LanguageEN: "Prices in the collection range from 0.25 to 0.75 POL. Tell me the name of a piece and I will give you its exact price.",
	},
	domain.IntentCollection: {
		domain.LanguageES: "La " + CollectionName + " reúne piezas inspiradas en el cielo y el inframundo del Caribe mexicano. Pregúntame por cualquiera de ellas.",
		domain.LanguageEN: "The " + CollectionName + " gathers pieces inspired by the sky and underworld of the Mexican Caribbean. Ask me about any of them.",
	},
	domain.IntentGeneral: {
		domain.LanguageES: "Ahora mismo no puedo consultar a mi asistente, pero puedo contarte sobre los NFTs, sus precios, cómo comprarlos y el museo en Playa del Carmen.",
		domain.LanguageEN: "I cannot reach my assistant right now, but I can tell you about the NFTs, their prices, how to buy them and the museum in Playa del Carmen.",
	},
}

// Fallback returns a substantive answer for when the generative model is
// unavailable. Intents with a canned block reuse it.
func Fallback(in domain.Intent, lang domain.Language) string {
	if text, ok := Block(in, lang); ok {
		return text
	}
	byLang, ok := fallbacks[in]
	if !ok {
		byLang = fallbacks[domain.IntentGeneral]
	}
	if text, ok := byLang[lang]; ok {
		return text
	}
	return byLang[domain.LanguageES]
}

// Help lists what the chatbot can do.
func Help(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return strings.Join([]string{
			"I can help you with:",
			"• Prices of each NFT (e.g. \"price of CHIDO\")",
			"• Details and rarity of a piece",
			"• How to buy with your wallet",
			"• Museum address, hours and contact",
			"• How blockchain and NFTs work",
		}, "\n")
	}
	return strings.Join([]string{
		"Puedo ayudarte con:",
		"• Precios de cada NFT (por ejemplo \"precio de CHIDO\")",
		"• Detalles y rareza de una pieza",
		"• Cómo comprar con tu billetera",
		"• Dirección, horario y contacto del museo",
		"• Cómo funcionan blockchain y los NFTs",
	}, "\n")
}
