// Package advisor wraps the AI endpoints: conversational spending
// advice and receipt scanning. Model output is untrusted input; scanned
// receipts are revalidated before they can become transactions.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

const advicePrompt = `Kamu adalah penasihat keuangan pribadi yang santai, lucu, tapi tegas.
Berikan saran singkat (maksimal 2-3 kalimat) berdasarkan data keuangan user ini.
Jangan terlalu formal, gunakan bahasa gaul yang sopan jika perlu.`

const scanPrompt = `Analyze this receipt image. Extract these fields into a strict JSON format only:

total: (Number, clean without currency symbols)
date: (String, YYYY-MM-DD format, or today's date if missing)
items: (Array of strings, list of main items purchased)
merchant: (String, store name)
category: (String, guess one: 'F&B', 'Transport', 'Shopping', 'Bills', 'Misc')

RETURN ONLY RAW JSON. NO MARKDOWN. NO CODE FENCES.`

type Advisor struct {
	client *openai.Client
	model  string
}

func New(apiKey, model string) *Advisor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Advisor{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Chat answers a financial question with the ledger snapshot as context.
// TRANSFER transactions are excluded from the context: they move money
// between own wallets and would skew income or spending totals.
func (a *Advisor) Chat(ctx context.Context, question string, txs []core.Transaction) (string, error) {
	var income, spending int64
	for _, t := range txs {
		switch t.Type {
		case core.TypeIncome:
			income += t.Amount
		case core.TypeExpense:
			spending += t.Amount
		}
	}
	contextData, err := json.Marshal(map[string]any{
		"totalIncome":   income,
		"totalSpending": spending,
		"transactions":  len(txs),
	})
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advicePrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("DATA KEUANGAN USER (JSON):\n%s\n\nPERTANYAAN USER:\n%s", contextData, question)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Receipt is the validated result of a scan, ready to become an expense.
type Receipt struct {
	Amount   int64     `json:"amount"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

type scanResponse struct {
	Total    float64  `json:"total"`
	Date     string   `json:"date"`
	Items    []string `json:"items"`
	Merchant string   `json:"merchant"`
	Category string   `json:"category"`
}

// ScanReceipt extracts a receipt from a base64-encoded image and
// validates the model's output: the amount must normalize to a positive
// value and unknown categories fall back to Misc.
func (a *Advisor) ScanReceipt(ctx context.Context, imageBase64 string) (Receipt, error) {
	if !strings.HasPrefix(imageBase64, "data:") {
		imageBase64 = "data:image/jpeg;base64," + imageBase64
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: scanPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageBase64}},
				},
			},
		},
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("scan completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Receipt{}, fmt.Errorf("empty scan response")
	}

	raw := resp.Choices[0].Message.Content
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")

	var parsed scanResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return Receipt{}, fmt.Errorf("parse scan result: %w", err)
	}

	amount := core.NormalizeAmount(parsed.Total)
	if amount <= 0 {
		return Receipt{}, core.ErrInvalidAmount
	}

	category := parsed.Category
	if !core.KnownCategory(category) {
		category = core.DefaultCategory
	}

	title := "Struk Belanja"
	if parsed.Merchant != "" {
		item := "Items"
		if len(parsed.Items) > 0 {
			item = parsed.Items[0]
		}
		title = fmt.Sprintf("%s (%s)", parsed.Merchant, item)
	}

	date := time.Now().UTC()
	if d, err := time.Parse("2006-01-02", parsed.Date); err == nil {
		date = d
	}

	return Receipt{
		Amount:   amount,
		Title:    title,
		Category: category,
		Date:     date,
	}, nil
}
