// Package agent drives the tool-augmented conversation loop.
package agent

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akmal-2004/easify-seller/internal/events"
	"github.com/akmal-2004/easify-seller/internal/llm"
	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/internal/payment"
	"github.com/akmal-2004/easify-seller/internal/search"
	"github.com/akmal-2004/easify-seller/internal/session"
	"github.com/akmal-2004/easify-seller/pkg/logger"
	"github.com/akmal-2004/easify-seller/pkg/metrics"
)

// Options configures the conversation loop.
type Options struct {
	Model         string
	MaxToolRounds int
	Language      string
}

// Agent mediates between the channel, the completion service and the tools.
type Agent struct {
	llm      llm.Client
	search   *search.Adapter
	payments *payment.Builder
	sessions *session.Store

	payURLPattern *regexp.Regexp
	publisher     events.Publisher
	logger        *logger.Logger
	tracer        trace.Tracer

	model         string
	maxToolRounds int
	language      string
}

// New creates an agent.
func New(
	llmClient llm.Client,
	searchAdapter *search.Adapter,
	payments *payment.Builder,
	sessions *session.Store,
	publisher events.Publisher,
	log *logger.Logger,
	opts Options,
) *Agent {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 4
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Agent{
		llm:           llmClient,
		search:        searchAdapter,
		payments:      payments,
		sessions:      sessions,
		payURLPattern: payURLPattern(payments.BaseURL()),
		publisher:     publisher,
		logger:        log,
		tracer:        otel.Tracer("agent"),
		model:         opts.Model,
		maxToolRounds: opts.MaxToolRounds,
		language:      opts.Language,
	}
}

// exchange carries state that lives for one inbound event: the uploaded
// image, if any, and the products surfaced by searches so the reply renderer
// can attach their photos.
type exchange struct {
	image    []byte
	products []model.Product
	seen     map[string]bool
}

func (ex *exchange) remember(result model.SearchResult) {
	if ex.seen == nil {
		ex.seen = make(map[string]bool)
	}
	for _, sp := range result {
		if sp.Product.PhotoURL == "" || ex.seen[sp.Product.PhotoURL] {
			continue
		}
		ex.seen[sp.Product.PhotoURL] = true
		ex.products = append(ex.products, sp.Product)
	}
}

// Handle processes one inbound event and returns the replies to send.
// Failures are recovered here: the caller always gets something sendable.
// Events for the same chat are serialized on the session lock; the session
// transcript is only committed after a completed exchange, so a transport
// failure mid-loop leaves it untouched.
func (a *Agent) Handle(ctx context.Context, in model.Inbound) []model.Outbound {
	log := a.logger.WithChat(in.ChatID)
	sess := a.sessions.GetOrCreate(in.ChatID)
	sess.Lock()
	defer sess.Unlock()

	if in.Kind == model.InboundCommand {
		return a.handleCommand(ctx, sess, in, log)
	}

	ctx, span := a.tracer.Start(ctx, "agent.exchange")
	defer span.End()

	start := time.Now()
	kind := string(in.Kind)
	metrics.MessagesTotal.WithLabelValues("in", kind).Inc()

	text := strings.TrimSpace(in.Text)
	if in.Kind == model.InboundPhoto && text == "" {
		text = defaultPhotoPrompt
	}

	ex := &exchange{image: in.Image}
	working := append(sess.Snapshot(), model.Turn{
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})
	toolCalls := 0

	for round := 0; round < a.maxToolRounds; round++ {
		resp, err := a.complete(ctx, working)
		if err != nil {
			log.Error("completion failed", zap.Error(err))
			metrics.ExchangeDuration.WithLabelValues(kind, "error").Observe(time.Since(start).Seconds())
			return []model.Outbound{{Text: genericErrorReply}}
		}

		if len(resp.ToolCalls) == 0 {
			working = append(working, model.Turn{
				Role:      model.RoleAssistant,
				Content:   resp.Content,
				CreatedAt: time.Now(),
			})
			a.sessions.Commit(sess, working)
			a.publish(events.Event{
				ChatID:    in.ChatID,
				Type:      events.TypeExchange,
				Turns:     sess.Len(),
				ToolCalls: toolCalls,
			})
			metrics.ExchangeDuration.WithLabelValues(kind, "ok").Observe(time.Since(start).Seconds())
			out := a.render(ex, resp.Content)
			metrics.MessagesTotal.WithLabelValues("out", kind).Add(float64(len(out)))
			return out
		}

		working = append(working, model.Turn{
			Role:      model.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: turnToolCalls(resp.ToolCalls),
			CreatedAt: time.Now(),
		})

		for _, call := range resp.ToolCalls {
			toolCalls++
			result, err := a.dispatch(ctx, ex, call)
			if err != nil {
				// An InvalidAmount means the model or config produced a bad
				// amount; that is a defect, not a user problem.
				if errors.Is(err, payment.ErrInvalidAmount) {
					log.Error("tool call failed", zap.String("tool", call.Name), zap.Error(err))
				} else {
					log.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(err))
				}
				metrics.RecordToolCall(call.Name, "error")
				result = toolErrorMessage(err)
			} else {
				metrics.RecordToolCall(call.Name, "ok")
			}
			// A result turn is appended even on failure so the transcript
			// never leaves a tool call unanswered.
			working = append(working, model.Turn{
				Role:       model.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				CreatedAt:  time.Now(),
			})
		}
	}

	log.Warn("tool-call round limit reached", zap.Int("rounds", a.maxToolRounds))
	working = append(working, model.Turn{
		Role:      model.RoleAssistant,
		Content:   fallbackReply,
		CreatedAt: time.Now(),
	})
	a.sessions.Commit(sess, working)
	a.publish(events.Event{
		ChatID:    in.ChatID,
		Type:      events.TypeExchange,
		Turns:     sess.Len(),
		ToolCalls: toolCalls,
	})
	metrics.ExchangeDuration.WithLabelValues(kind, "exhausted").Observe(time.Since(start).Seconds())
	return []model.Outbound{{Text: fallbackReply}}
}

func (a *Agent) handleCommand(ctx context.Context, sess *session.Session, in model.Inbound, log *logger.Logger) []model.Outbound {
	switch in.Command {
	case model.CommandStart:
		log.Info("chat started")
		sess.Touch()
		return []model.Outbound{{Text: welcomeReply}}
	case model.CommandClear:
		sess.Reset()
		a.publish(events.Event{ChatID: in.ChatID, Type: events.TypeReset})
		log.Info("conversation reset")
		return []model.Outbound{{Text: resetReply}}
	default:
		return []model.Outbound{{Text: helpReply}}
	}
}

// complete calls the completion service with the system prompt, the working
// transcript and the declared tool set.
func (a *Agent) complete(ctx context.Context, working []model.Turn) (*llm.CompletionResponse, error) {
	messages := make([]llm.ChatMessage, 0, len(working)+1)
	messages = append(messages, llm.ChatMessage{
		Role:    string(model.RoleSystem),
		Content: systemPrompt(a.language),
	})
	for _, t := range working {
		messages = append(messages, llm.ChatMessage{
			Role:       string(t.Role),
			Content:    t.Content,
			ToolCalls:  llmToolCalls(t.ToolCalls),
			ToolCallID: t.ToolCallID,
		})
	}

	resp, err := a.llm.Complete(ctx, &llm.CompletionRequest{
		Model:    a.model,
		Messages: messages,
		Tools:    toolSet(),
	})
	if err != nil {
		metrics.RecordCompletion(a.model, "error", 0, 0, 0)
		return nil, err
	}
	metrics.RecordCompletion(resp.Model, "ok", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

// publish sends a conversation event; failures are logged, never surfaced.
func (a *Agent) publish(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.publisher.Publish(ctx, ev); err != nil {
		a.logger.Warn("failed to publish conversation event", zap.Error(err))
	}
}

// toolErrorMessage maps a tool failure onto a result the model can recover
// from conversationally. Internal details are never passed through raw.
func toolErrorMessage(err error) string {
	switch {
	case errors.Is(err, search.ErrImageDecode):
		return "Error: the uploaded photo could not be read. Ask the customer to resend it."
	case errors.Is(err, search.ErrCatalogUnavailable):
		return "Error: the product catalog is temporarily unavailable. Apologize and suggest trying again shortly."
	case errors.Is(err, search.ErrImageSearchUnsupported):
		return "Error: photo search is not available. Ask the customer to describe the bouquet in text."
	case errors.Is(err, payment.ErrInvalidAmount):
		return "Error: the payment link could not be generated. Apologize to the customer."
	case errors.Is(err, ErrUnknownTool), errors.Is(err, ErrBadToolArgs):
		return "Error: " + err.Error()
	default:
		return "Error: the request could not be completed. Apologize and suggest trying again."
	}
}

func turnToolCalls(calls []llm.ToolCall) []model.ToolCall {
	out := make([]model.ToolCall, len(calls))
	for i, c := range calls {
		out[i] = model.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments}
	}
	return out
}

func llmToolCalls(calls []model.ToolCall) []llm.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]llm.ToolCall, len(calls))
	for i, c := range calls {
		out[i] = llm.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments}
	}
	return out
}
