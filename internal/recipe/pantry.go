package recipe

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPantry is the built-in ingredient catalogue, by category.
var DefaultPantry = map[string][]string{
	"vegetables": {"spinach", "kale", "carrots", "bell peppers", "cucumber", "tomatoes"},
	"proteins":   {"chicken breast", "salmon", "tofu", "eggs", "chickpeas"},
	"grains":     {"quinoa", "brown rice", "bread", "oats"},
	"fruits":     {"apples", "bananas", "berries", "mango", "avocado", "lemon"},
	"dairy":      {"milk", "yogurt", "cheese", "butter"},
}

// BeverageExtras are offered in addition to the pantry when making drinks.
var BeverageExtras = []string{
	"Mint", "Lime", "Orange", "Strawberry", "Honey", "Sugar Syrup", "Ginger",
	"Cinnamon", "Ice", "Vanilla Extract", "Coconut Milk", "Almond Milk",
	"Soda Water", "Tonic Water", "Pineapple Juice", "Cranberry Juice",
	"Pomegranate Juice", "Passion Fruit", "Watermelon", "Coffee Beans",
	"Tea Leaves", "Matcha", "Cardamom", "Cocoa Powder", "Basil",
}

// DessertExtras are offered in addition to the pantry when making desserts.
var DessertExtras = []string{
	"Flour", "Sugar", "Brown Sugar", "Cocoa Powder", "Dark Chocolate",
	"Cream Cheese", "Heavy Cream", "Vanilla Bean", "Almonds", "Hazelnuts",
	"Gelatin", "Puff Pastry", "Condensed Milk", "Maple Syrup", "Coconut Flakes",
}

var titleCaser = cases.Title(language.English)

// Pantry answers ingredient lookups over a fixed catalogue.
type Pantry struct {
	items   []string
	matcher *closestmatch.ClosestMatch
}

// NewPantry merges the default catalogue with any extra lists, dropping
// case-insensitive duplicates.
func NewPantry(extra ...[]string) *Pantry {
	seen := map[string]bool{}
	var items []string
	add := func(list []string) {
		for _, item := range list {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, item)
		}
	}

	categories := make([]string, 0, len(DefaultPantry))
	for c := range DefaultPantry {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		add(DefaultPantry[c])
	}
	for _, list := range extra {
		add(list)
	}

	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i]) < strings.ToLower(items[j])
	})

	return &Pantry{
		items:   items,
		matcher: closestmatch.New(items, []int{2, 3}),
	}
}

// All returns the catalogue in alphabetical order.
func (p *Pantry) All() []string {
	out := make([]string, len(p.items))
	copy(out, p.items)
	return out
}

// Search matches term against the catalogue. An item matches when either
// contains the other or when the item contains any word of the term. A term
// that is not in the catalogue is offered back as a custom ingredient, and
// when nothing matches the closest spelling is suggested as well.
func (p *Pantry) Search(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return p.All()
	}

	words := strings.Fields(term)
	var matches []string
	exact := false
	for _, item := range p.items {
		lower := strings.ToLower(item)
		if lower == term {
			exact = true
		}
		if strings.Contains(lower, term) || strings.Contains(term, lower) || containsAny(lower, words) {
			matches = append(matches, item)
		}
	}

	if !exact {
		matches = append([]string{titleCaser.String(term)}, matches...)
	}

	if len(matches) == 1 && !exact {
		if closest := p.matcher.Closest(term); closest != "" {
			matches = append(matches, closest)
		}
	}
	return matches
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
