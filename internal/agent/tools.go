package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akmal-2004/easify-seller/internal/llm"
	"github.com/akmal-2004/easify-seller/internal/search"
	"github.com/akmal-2004/easify-seller/pkg/metrics"
)

// Tool names form a closed set; anything else the model asks for is rejected
// with ErrUnknownTool.
const (
	ToolSearchByText     = "search_by_text"
	ToolSearchByImage    = "search_by_image"
	ToolBuildPaymentLink = "build_payment_link"
)

var (
	// ErrUnknownTool is returned when the model requests a tool outside the
	// declared set.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBadToolArgs is returned when tool arguments fail validation.
	ErrBadToolArgs = errors.New("invalid tool arguments")
)

// toolSet declares the callable tools to the completion service.
func toolSet() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolSearchByText,
			Description: "Search for bouquets using a text query with optional price filters",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Text query describing what the customer is looking for",
					},
					"min_price": map[string]any{
						"type":        "integer",
						"description": "Minimum price in minor currency units",
					},
					"max_price": map[string]any{
						"type":        "integer",
						"description": "Maximum price in minor currency units",
					},
					"k": map[string]any{
						"type":        "integer",
						"description": "Number of results to return (max 5)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolSearchByImage,
			Description: "Search for bouquets similar to the photo the customer just uploaded",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"min_price": map[string]any{
						"type":        "integer",
						"description": "Minimum price in minor currency units",
					},
					"max_price": map[string]any{
						"type":        "integer",
						"description": "Maximum price in minor currency units",
					},
					"k": map[string]any{
						"type":        "integer",
						"description": "Number of results to return (max 5)",
					},
				},
			},
		},
		{
			Name:        ToolBuildPaymentLink,
			Description: "Generate a payment link when the customer wants to buy",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount": map[string]any{
						"type":        "integer",
						"description": "Price of the product in minor currency units",
					},
				},
				"required": []string{"amount"},
			},
		},
	}
}

type searchByTextArgs struct {
	Query    string `json:"query"`
	MinPrice int64  `json:"min_price"`
	MaxPrice int64  `json:"max_price"`
	K        int    `json:"k"`
}

type searchByImageArgs struct {
	MinPrice int64 `json:"min_price"`
	MaxPrice int64 `json:"max_price"`
	K        int   `json:"k"`
}

type buildPaymentLinkArgs struct {
	Amount int64 `json:"amount"`
}

// dispatch executes one tool call and returns the tool-result content. The
// exchange carries per-exchange state such as the uploaded image and the
// products shown so far.
func (a *Agent) dispatch(ctx context.Context, ex *exchange, call llm.ToolCall) (string, error) {
	switch call.Name {
	case ToolSearchByText:
		var args searchByTextArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadToolArgs, err)
		}
		if args.Query == "" {
			return "", fmt.Errorf("%w: query is required", ErrBadToolArgs)
		}
		result, err := a.search.ByText(ctx, args.Query, search.Filters{
			MinPrice: args.MinPrice,
			MaxPrice: args.MaxPrice,
			K:        args.K,
		})
		if err != nil {
			return "", err
		}
		ex.remember(result)
		return search.FormatForModel(result), nil

	case ToolSearchByImage:
		var args searchByImageArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadToolArgs, err)
		}
		if len(ex.image) == 0 {
			return "", fmt.Errorf("%w: no photo was uploaded in this message", ErrBadToolArgs)
		}
		result, err := a.search.ByImage(ctx, ex.image, search.Filters{
			MinPrice: args.MinPrice,
			MaxPrice: args.MaxPrice,
			K:        args.K,
		})
		if err != nil {
			return "", err
		}
		ex.remember(result)
		return search.FormatForModel(result), nil

	case ToolBuildPaymentLink:
		var args buildPaymentLinkArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadToolArgs, err)
		}
		ref := uuid.Must(uuid.NewV7()).String()
		url, err := a.payments.Build(args.Amount, ref)
		if err != nil {
			return "", err
		}
		metrics.PaymentLinksTotal.Inc()
		return fmt.Sprintf("Payment link generated (amount: %d minor units):\n%s", args.Amount, url), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
}
