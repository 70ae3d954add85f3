package domain

// Intent is the coarse category of a user question.
type Intent string

const (
	IntentPrice      Intent = "price_inquiry"
	IntentMuseum     Intent = "museum_info"
	IntentPurchase   Intent = "purchase_info"
	IntentRarity     Intent = "rarity_info"
	IntentArtist     Intent = "artist_info"
	IntentTechnical  Intent = "technical_info"
	IntentCollection Intent = "collection_overview"
	IntentGeneral    Intent = "general_inquiry"
)

type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

// Suggestion is a canned quick reply offered to the user.
type Suggestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}
