package services

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

// PromptProfile is who the assistant speaks for.
type PromptProfile struct {
	OwnerName    string
	ContactEmail string
}

// BuildPrompt is deterministic: the same inputs always give the same text.
func BuildPrompt(profile PromptProfile, query string, chunks []model.RAGChunk, history []model.ConversationMessage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, speaking directly to recruiters and hiring managers about your background, skills and experience.\n\n", profile.OwnerName)
	b.WriteString("Your role:\n")
	b.WriteString("- Answer questions about your resume, education, projects, skills and experience\n")
	b.WriteString("- Use only the resume context below for facts, and be specific about technologies and results\n")
	fmt.Fprintf(&b, "- Always speak in first person as %s\n", profile.OwnerName)
	b.WriteString("- Keep responses concise (2-4 sentences) and end with a follow-up question when it fits\n")
	b.WriteString("- If something is not covered by the context, say so and offer to discuss it further\n\n")

	b.WriteString("RESUME CONTEXT:\n")
	if len(chunks) == 0 {
		b.WriteString("(no matching resume sections)\n")
	}
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "Source %d (Page %d, %s):\n%s\n", i+1, chunk.Metadata.PageNumber, chunk.Metadata.Source, chunk.Text)
	}

	if len(history) > 0 {
		b.WriteString("\nPREVIOUS CONVERSATION:\n")
		for _, msg := range history {
			speaker := "USER"
			if msg.Role == shared.RoleAssistant {
				speaker = strings.ToUpper(profile.OwnerName)
			}
			fmt.Fprintf(&b, "%s: %q\n", speaker, msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nCURRENT USER QUESTION:\n%s\n\nResponse:", strings.TrimSpace(query))
	return b.String()
}

type FallbackKind string

const (
	FallbackRateLimit FallbackKind = "rate_limit"
	FallbackAuth      FallbackKind = "auth"
	FallbackBilling   FallbackKind = "billing"
	FallbackGeneric   FallbackKind = "generic"
)

var (
	rateLimitMarkers = []string{"rate limit", "rate_limit", "ratelimit", "quota", "resource_exhausted", "too many requests"}
	authMarkers      = []string{"api_key", "api key", "authentication", "unauthenticated", "unauthorized", "permission_denied"}
	billingMarkers   = []string{"billing", "credit", "payment"}

	// Status codes only count as whole words, "14290 bytes" is not a 429.
	rateLimitCodes = []string{"429"}
	authCodes      = []string{"401", "403"}
)

// ClassifyFailure maps a completion error to the fallback family. Rate-limit wording wins
// over auth, auth over billing.
func ClassifyFailure(err error) FallbackKind {
	if err == nil {
		return FallbackGeneric
	}

	message := strings.ToLower(err.Error())
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	switch {
	case containsAny(message, rateLimitMarkers) || slices.ContainsFunc(words, matchesAny(rateLimitCodes)):
		return FallbackRateLimit
	case containsAny(message, authMarkers) || slices.ContainsFunc(words, matchesAny(authCodes)):
		return FallbackAuth
	case containsAny(message, billingMarkers):
		return FallbackBilling
	default:
		return FallbackGeneric
	}
}

func FallbackReply(profile PromptProfile, kind FallbackKind) string {
	switch kind {
	case FallbackRateLimit:
		return fmt.Sprintf("I apologize, but I've reached my AI usage limit for now. Please try again later, or reach out to me directly at %s to talk about my experience. What would you like to know about my background?", profile.ContactEmail)
	case FallbackAuth:
		return fmt.Sprintf("I apologize, but there's a temporary issue with my AI service. Please try again later, or reach out to me directly at %s. What would you like to know about my background?", profile.ContactEmail)
	case FallbackBilling:
		return fmt.Sprintf("I apologize, but my AI service is paused because of a billing issue. Please reach out to me directly at %s and I'll be happy to walk you through my experience.", profile.ContactEmail)
	default:
		return fmt.Sprintf("I apologize, but I'm having trouble processing your request right now. Feel free to reach out to me directly at %s, or try again in a moment. What would you like to know about my background?", profile.ContactEmail)
	}
}

func matchesAny(codes []string) func(string) bool {
	return func(word string) bool {
		return slices.Contains(codes, word)
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
