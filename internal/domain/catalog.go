package domain

import "fmt"

// CatalogRecord is one NFT of the collection. Records are loaded once and
// never mutated.
type CatalogRecord struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	AnimationURI    string      `json:"animationUri,omitempty"`
	ContractAddress string      `json:"contractAddress"`
	SplitAddress    string      `json:"splitAddress"`
	Price           string      `json:"price"`
	CurrencySymbol  string      `json:"currencySymbol"`
	MetadataURI     string      `json:"metadataUri"`
	Attributes      []Attribute `json:"attributes,omitempty"`
}

// Attribute mirrors the ERC-721 metadata attribute shape. Value is a string
// or a number depending on the trait.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// ValueString renders Value the way it is shown to users and matched
// against queries.
func (a Attribute) ValueString() string {
	if a.Value == nil {
		return ""
	}
	if f, ok := a.Value.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(a.Value)
}

// NFTMetadata is the JSON document served at a record's metadata URI.
type NFTMetadata struct {
	Name         string      `json:"name"`
	Image        string      `json:"image"`
	Description  string      `json:"description,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	AnimationURL string      `json:"animation_url,omitempty"`
}
