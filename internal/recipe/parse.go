package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseGenerated reads a model answer. JSON answers are decoded, JSON
// wrapped in prose or code fences is extracted, and anything else is kept
// as plain recipe text under fallbackTitle.
func ParseGenerated(resp, fallbackTitle string) *Generated {
	var g Generated
	if err := json.Unmarshal([]byte(resp), &g); err != nil {
		extracted, extractErr := extractJSONFromResponse(resp)
		if extractErr != nil {
			return &Generated{Title: fallbackTitle, Text: strings.TrimSpace(resp)}
		}
		g = *extracted
	}

	if g.Title == "" {
		g.Title = fallbackTitle
	}
	if g.Text == "" {
		g.Text = renderText(&g)
	}
	return &g
}

// extractJSONFromResponse tries to find and extract JSON from a text response
func extractJSONFromResponse(response string) (*Generated, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start != -1 && end != -1 && end > start {
		var g Generated
		if err := json.Unmarshal([]byte(response[start:end+1]), &g); err == nil {
			return &g, nil
		}
	}

	return nil, fmt.Errorf("no valid JSON found in response")
}

func renderText(g *Generated) string {
	var b strings.Builder
	b.WriteString(g.Title)
	b.WriteString("\n")
	if g.Servings > 0 {
		fmt.Fprintf(&b, "Servings: %d\n", g.Servings)
	}
	if g.PrepTimeMin > 0 {
		fmt.Fprintf(&b, "Preparation time: %d minutes\n", g.PrepTimeMin)
	}
	if len(g.Ingredients) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, i := range g.Ingredients {
			fmt.Fprintf(&b, "- %s\n", i)
		}
	}
	if len(g.Instructions) > 0 {
		b.WriteString("\nInstructions:\n")
		for n, step := range g.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", n+1, step)
		}
	}
	return strings.TrimSpace(b.String())
}
