package catalog

import "nft-gallery-agent/internal/domain"

const (
	collectionContract = "0x7a3b9c1d2e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b"
	collectionSplit    = "0x4f2e8d1c6b3a5e7f9d0c2b4a6e8f1d3c5b7a9e0d"
)

var seedRecords = []domain.CatalogRecord{
	{
		ID:              "CHIDO",
		Name:            "C.H.I.D.O.",
		Description:     "Cosmic Hybrid Intelligence for Digital Orbits, a pilot who crossed the Caribbean sky in a golden saucer.",
		Image:           "ipfs://bafybeigchido/chido.png",
		AnimationURI:    "ipfs://bafybeigchido/chido.mp4",
		ContractAddress: collectionContract,
		SplitAddress:    collectionSplit,
		Price:           "0.5",
		CurrencySymbol:  "POL",
		MetadataURI:     "ipfs://bafybeigchido/metadata.json",
		Attributes: []domain.Attribute{
			{TraitType: "Rarity", Value: "Legendary"},
			{TraitType: "Vehicle", Value: "Golden Saucer"},
			{TraitType: "Edition", Value: 1},
		},
	},
	{
		ID:              "AXO",
		Name:            "Axolotl Navigator",
		Description:     "An amphibian astronaut that maps underground rivers from orbit.",
		Image:           "ipfs://bafybeigaxo/axo.png",
		ContractAddress: collectionContract,
		SplitAddress:    collectionSplit,
		Price:           "0.35",
		CurrencySymbol:  "POL",
		MetadataURI:     "ipfs://bafybeigaxo/metadata.json",
		Attributes: []domain.Attribute{
			{TraitType: "Rarity", Value: "Rare"},
			{TraitType: "Element", Value: "Water"},
			{TraitType: "Edition", Value: 2},
		},
	},
	{
		ID:              "XOLO",
		Name:            "Xolo Guardian",
		Description:     "A hairless dog that guards the portal between the underworld and the stars.",
		Image:           "ipfs://bafybeigxolo/xolo.png",
		AnimationURI:    "ipfs://bafybeigxolo/xolo.mp4",
		ContractAddress: collectionContract,
		SplitAddress:    collectionSplit,
		Price:           "0.4",
		CurrencySymbol:  "POL",
		MetadataURI:     "ipfs://bafybeigxolo/metadata.json",
		Attributes: []domain.Attribute{
			{TraitType: "Rarity", Value: "Epic"},
			{TraitType: "Element", Value: "Obsidian"},
			{TraitType: "Edition", Value: 3},
		},
	},
	{
		ID:              "CENOTE",
		Name:            "Cenote Signal",
		Description:     "Radio waves rising from a sacred sinkhole, captured as a pulsing light sculpture.",
		Image:           "ipfs://bafybeigcenote/cenote.png",
		ContractAddress: collectionContract,
		SplitAddress:    collectionSplit,
		Price:           "0.25",
		CurrencySymbol:  "POL",
		MetadataURI:     "ipfs://bafybeigcenote/metadata.json",
		Attributes: []domain.Attribute{
			{TraitType: "Rarity", Value: "Common"},
			{TraitType: "Element", Value: "Light"},
			{TraitType: "Edition", Value: 4},
		},
	},
	{
		ID:              "JAGUAR",
		Name:            "Jaguar Moon",
		Description:     "A feline deity who swallows the moon every night and returns it at dawn.",
		Image:           "ipfs://bafybeigjaguar/jaguar.png",
		AnimationURI:    "ipfs://bafybeigjaguar/jaguar.mp4",
		ContractAddress: collectionContract,
		SplitAddress:    collectionSplit,
		Price:           "0.75",
		CurrencySymbol:  "POL",
		MetadataURI:     "ipfs://bafybeigjaguar/metadata.json",
		Attributes: []domain.Attribute{
			{TraitType: "Rarity", Value: "Legendary"},
			{TraitType: "Element", Value: "Night"},
			{TraitType: "Edition", Value: 5},
		},
	},
}
