package assistant

import (
	"fmt"
	"strings"

	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/knowledge"
)

func buildPrompt(records []domain.CatalogRecord, req Request, history []domain.ConversationMessage) string {
	sections := []string{
		"Role:",
		"You are the guide of the " + knowledge.CollectionName + " NFT gallery and its museum.",
		"",
		"Knowledge Base:",
		knowledgeBase(records),
		"",
		"Behavior Rules:",
		behaviorRules(req.Language),
	}
	if len(history) > 0 {
		sections = append(sections, "", "Recent Conversation:", renderHistory(history))
	}
	sections = append(sections, "", "Question:", strings.TrimSpace(req.Input))
	return strings.Join(sections, "\n")
}

func knowledgeBase(records []domain.CatalogRecord) string {
	m := knowledge.MuseumInfo()
	lines := []string{
		fmt.Sprintf("Museum: %s, %s. Hours: %s. Contact: %s, %s.",
			m.Name, m.Address, m.Hours[domain.LanguageEN], m.Email, m.Phone),
		fmt.Sprintf("Network: %s. Standard: ERC-721. Currency: POL.", knowledge.Network),
		"NFTs:",
	}
	for _, r := range records {
		line := fmt.Sprintf("- %s (id %s): %s Price: %s %s. Contract: %s.",
			r.Name, r.ID, collapse(r.Description), r.Price, r.CurrencySymbol, r.ContractAddress)
		if attrs := renderAttributes(r.Attributes); attrs != "" {
			line += " Attributes: " + attrs + "."
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderAttributes(attrs []domain.Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.TraitType+"="+a.ValueString())
	}
	return strings.Join(parts, ", ")
}

func behaviorRules(lang domain.Language) string {
	answerIn := "Spanish"
	if lang == domain.LanguageEN {
		answerIn = "English"
	}
	return strings.Join([]string{
		"1) Answer in " + answerIn + ".",
		"2) Use only the knowledge base and the recent conversation as sources.",
		"3) Keep answers under 120 words, friendly and concrete.",
		"4) Never invent prices, addresses or contract addresses.",
		"5) If the question is unrelated to the gallery, the NFTs or the museum, steer the user back to them.",
	}, "\n")
}

func renderHistory(history []domain.ConversationMessage) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		who := "User"
		if m.Sender == domain.SenderBot {
			who = "Assistant"
		}
		lines = append(lines, who+": "+collapse(m.Text))
	}
	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
