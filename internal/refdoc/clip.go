package refdoc

import "strings"

// EstimateTokens gives a rough token count using a word-based heuristic.
// This is intentionally simple — exact tokenization is not required for
// budgeting prompt context.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// Clip truncates text to roughly maxTokens, keeping whole paragraphs.
// A single paragraph larger than the whole budget falls back to a word
// cut. A budget of zero or less means no clipping.
func Clip(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}

	var sb strings.Builder
	total := 0
	for _, para := range splitParagraphs(text) {
		t := EstimateTokens(para)
		if total+t > maxTokens {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(para)
		total += t
	}
	if sb.Len() == 0 {
		words := strings.Fields(text)
		target := int(float64(maxTokens) / 1.33)
		if target < 1 {
			target = 1
		}
		if target < len(words) {
			words = words[:target]
		}
		return strings.Join(words, " ")
	}
	return sb.String()
}

// splitParagraphs splits on double-newlines.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
