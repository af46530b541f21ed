// Package chat answers customer questions about the menu through an LLM.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/ray-remotestate/pizzeria/models"
	"github.com/ray-remotestate/pizzeria/pricing"
)

var ErrEmptyMessage = errors.New("message is empty")

const maxHistory = 20

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Catalog interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, categoryID *int64) ([]models.Product, error)
}

type Assistant struct {
	model   llms.Model
	catalog Catalog
}

func NewAssistant(model llms.Model, catalog Catalog) *Assistant {
	return &Assistant{model: model, catalog: catalog}
}

// SendMessage is stateless: the caller sends the prior turns in history and
// the system prompt is rebuilt from the current menu on every call.
func (a *Assistant) SendMessage(ctx context.Context, message string, history []Message) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	categories, err := a.catalog.ListCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("load categories: %w", err)
	}
	products, err := a.catalog.ListProducts(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("load products: %w", err)
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	content := make([]llms.MessageContent, 0, len(history)+2)
	content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, BuildSystemPrompt(categories, products)))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, m.Content))
		case RoleAssistant:
			content = append(content, llms.TextParts(schema.ChatMessageTypeAI, m.Content))
		}
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, message))

	resp, err := a.model.GenerateContent(ctx, content, llms.WithTemperature(0.3), llms.WithMaxTokens(500))
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// BuildSystemPrompt renders the menu grouped by category. Categories without
// available products are left out.
func BuildSystemPrompt(categories []models.Category, products []models.Product) string {
	var b strings.Builder
	b.WriteString("Du bist der freundliche Bestellassistent unserer Pizzeria. ")
	b.WriteString("Beantworte Fragen zur Speisekarte kurz und auf Deutsch. ")
	b.WriteString("Nenne nur Gerichte und Preise aus der folgenden Karte und erfinde nichts dazu.\n")

	byCategory := make(map[int64][]models.Product)
	for _, p := range products {
		if p.IsAvailable {
			byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
		}
	}

	for _, c := range categories {
		items := byCategory[c.ID]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", c.Name)
		for _, p := range items {
			b.WriteString(productLine(p))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func productLine(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s", p.Name, pricing.FormatCents(p.BasePrice))

	if p.HasVariants() {
		sizes := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			sizes = append(sizes, v.Name+" "+pricing.FormatCents(v.Price))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(sizes, ", "))
	}

	var tags []string
	if p.IsVegan {
		tags = append(tags, "vegan")
	} else if p.IsVegetarian {
		tags = append(tags, "vegetarisch")
	}
	if p.IsSpicy {
		tags = append(tags, "scharf")
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(tags, ", "))
	}
	if p.Description != "" {
		b.WriteString(" | " + p.Description)
	}
	return b.String()
}
