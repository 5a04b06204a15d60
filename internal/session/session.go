package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"devchat/internal/config"
	"devchat/internal/console"
	"devchat/internal/llm"

	"github.com/google/uuid"
)

const (
	probeAttempts = 5
	probeDelay    = time.Second
)

// probeSleep is swapped out by tests to avoid real delays.
var probeSleep = time.Sleep

// Session owns model-tier selection and cumulative spend accounting for the
// conversations it mints. It is meant for one caller at a time.
type Session struct {
	client  llm.Client
	printer *console.Printer
	verbose bool

	taskDescription string
	testDescription string

	tier   Tier
	model  string
	prices pricing

	promptChars     int
	generationChars int
}

// New validates the configuration, probes premium-tier availability when it
// was requested and selects pricing. A missing credential fails before any
// network call is made; an unavailable premium tier is a warning, not an
// error.
func New(ctx context.Context, cfg config.Config, client llm.Client, printer *console.Printer, taskDescription, testDescription string, requested Tier) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if printer == nil {
		printer = console.NewPrinter(nil)
	}
	if requested == "" {
		requested = TierPremium
	}

	tier := requested
	model := cfg.OpenAI.PremiumModel
	if requested == TierPremium && !premiumAvailable(ctx, client, cfg.OpenAI.PremiumModel) {
		printer.Warn(cfg.OpenAI.PremiumModel + " is not available. Using " + cfg.OpenAI.StandardModel + " instead.")
		tier = TierStandard
	}
	if tier == TierStandard {
		model = cfg.OpenAI.StandardModel
	}
	slog.Debug("session created", "tier", tier, "model", model)

	return &Session{
		client:          client,
		printer:         printer,
		verbose:         cfg.Verbose,
		taskDescription: taskDescription,
		testDescription: testDescription,
		tier:            tier,
		model:           model,
		prices:          pricingFor(tier),
	}, nil
}

// premiumAvailable issues up to probeAttempts minimal requests against the
// premium model. Rate limiting is retried after a fixed pause; any other
// rejection, or exhausting the attempts, counts as unavailable.
func premiumAvailable(ctx context.Context, client llm.Client, model string) bool {
	for attempt := 1; attempt <= probeAttempts; attempt++ {
		_, err := client.Chat(ctx, llm.ChatRequest{
			Model:    model,
			Messages: []llm.Message{{Role: "system", Content: "you respond nothing"}},
		})
		if err == nil {
			return true
		}
		if errors.Is(err, llm.ErrRateLimited) {
			slog.Debug("availability probe rate limited", "model", model, "attempt", attempt)
			probeSleep(probeDelay)
			continue
		}
		slog.Debug("availability probe rejected", "model", model, "error", err)
		return false
	}
	return false
}

// Conversation mints a new conversation bound to this session's tier,
// descriptions and cost accounting. A nil names slice selects all three
// example fragments; an empty non-nil slice selects none.
func (s *Session) Conversation(names []ExampleName) (*Conversation, error) {
	if names == nil {
		names = []ExampleName{ExampleExecutor, ExampleDocArray, ExampleClient}
	}
	content, err := renderSystemMessage(s.taskDescription, s.testDescription, names)
	if err != nil {
		return nil, err
	}
	if s.verbose {
		s.printer.System(content)
	}
	return &Conversation{
		id:            uuid.NewString(),
		tier:          s.tier,
		model:         s.model,
		client:        s.client,
		record:        s.recordUsage,
		printer:       s.printer,
		verbose:       s.verbose,
		systemMessage: llm.Message{Role: "system", Content: content},
	}, nil
}

// recordUsage adds a completed turn's character counts to the running
// totals and prints the cumulative spend, framed by blank lines.
func (s *Session) recordUsage(promptChars, generationChars int) {
	s.promptChars += promptChars
	s.generationChars += generationChars
	total := spend(s.promptChars, s.prices.prompt) + spend(s.generationChars, s.prices.generation)
	s.printer.Newline()
	s.printer.Linef("Total money spent so far on openai.com: $%.3f", total)
	s.printer.Newline()
}

func (s *Session) Tier() Tier {
	return s.tier
}

func (s *Session) Model() string {
	return s.model
}

// Usage returns the cumulative prompt and generation character counts.
func (s *Session) Usage() (promptChars, generationChars int) {
	return s.promptChars, s.generationChars
}
