// Package ninjas searches recipes through the API Ninjas recipe endpoint.
package ninjas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/recipe"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Log
}

func NewClient(cfg *config.NinjasConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API Ninjas key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.api-ninjas.com/v1"
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.New(),
	}, nil
}

// SearchRecipe returns the first recipe matching query.
func (c *Client) SearchRecipe(ctx context.Context, query string) (*recipe.Generated, error) {
	body, err := c.get(ctx, "/recipe", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: unexpected recipe payload", recipe.ErrExternalService)
	}
	first := result.Get("0")
	if !first.Exists() {
		return nil, fmt.Errorf("%w: no recipe found for %q", recipe.ErrExternalService, query)
	}

	g := &recipe.Generated{
		Title:        first.Get("title").String(),
		Ingredients:  splitNonEmpty(first.Get("ingredients").String(), "|"),
		Instructions: splitSentences(first.Get("instructions").String()),
		Servings:     leadingInt(first.Get("servings").String()),
	}
	if g.Title == "" {
		g.Title = query
	}
	g.Text = render(g, first.Get("instructions").String())

	c.logger.Debug(fmt.Sprintf("Found recipe %q for query %q", g.Title, query))
	return g, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recipe.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: API Ninjas quota exceeded", recipe.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn(fmt.Sprintf("API Ninjas returned status %d: %s", resp.StatusCode, string(body)))
		return nil, fmt.Errorf("%w: API Ninjas returned status %d", recipe.ErrExternalService, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON from API Ninjas", recipe.ErrExternalService)
	}
	return body, nil
}

func render(g *recipe.Generated, instructions string) string {
	var b strings.Builder
	b.WriteString(g.Title)
	b.WriteString("\n")
	if g.Servings > 0 {
		fmt.Fprintf(&b, "Servings: %d\n", g.Servings)
	}
	if len(g.Ingredients) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, i := range g.Ingredients {
			fmt.Fprintf(&b, "- %s\n", i)
		}
	}
	if instructions != "" {
		b.WriteString("\nInstructions:\n")
		b.WriteString(instructions)
	}
	return strings.TrimSpace(b.String())
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range splitNonEmpty(s, ". ") {
		out = append(out, strings.TrimSuffix(part, ".")+".")
	}
	return out
}

// leadingInt reads "4 Servings" as 4.
func leadingInt(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
