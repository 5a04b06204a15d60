package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"devchat/internal/config"
	"devchat/internal/console"
	"devchat/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	probeErrs  []error
	probeCalls int

	replies        []string
	streamErr      error
	streamRequests []llm.ChatRequest
}

func (f *fakeClient) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.probeCalls++
	if len(f.probeErrs) == 0 {
		return llm.ChatResponse{}, nil
	}
	err := f.probeErrs[0]
	f.probeErrs = f.probeErrs[1:]
	if err != nil {
		return llm.ChatResponse{}, err
	}
	return llm.ChatResponse{}, nil
}

func (f *fakeClient) ChatStream(ctx context.Context, req llm.ChatRequest, handle llm.StreamHandler) (llm.ChatResponse, error) {
	f.streamRequests = append(f.streamRequests, req)
	if f.streamErr != nil {
		return llm.ChatResponse{}, f.streamErr
	}
	reply := "ok"
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	if handle != nil {
		for _, delta := range []string{reply[:1], reply[1:]} {
			if delta == "" {
				continue
			}
			if err := handle(delta); err != nil {
				return llm.ChatResponse{}, err
			}
		}
	}
	return llm.ChatResponse{Content: reply}, nil
}

func testConfig() config.Config {
	return config.Config{
		OpenAI: config.OpenAIConfig{
			APIKey:        "sk-test",
			BaseURL:       "http://localhost",
			PremiumModel:  "gpt-4",
			StandardModel: "gpt-3.5-turbo",
		},
	}
}

func stubProbeSleep(t *testing.T) {
	t.Helper()
	original := probeSleep
	probeSleep = func(time.Duration) {}
	t.Cleanup(func() { probeSleep = original })
}

func rateLimited() error {
	return fmt.Errorf("%w: slow down", llm.ErrRateLimited)
}

func TestNewPremiumAvailableFirstAttempt(t *testing.T) {
	client := &fakeClient{}
	var out strings.Builder
	sess, err := New(context.Background(), testConfig(), client, console.NewPrinter(&out), "task", "test", TierPremium)
	require.NoError(t, err)

	assert.Equal(t, TierPremium, sess.Tier())
	assert.Equal(t, "gpt-4", sess.Model())
	assert.Equal(t, 1, client.probeCalls)
	assert.NotContains(t, out.String(), "instead")
}

func TestNewFallsBackAfterRateLimitsThenRejection(t *testing.T) {
	stubProbeSleep(t)
	client := &fakeClient{probeErrs: []error{
		rateLimited(), rateLimited(), rateLimited(), rateLimited(),
		fmt.Errorf("%w: no access", llm.ErrModelNotFound),
	}}
	var out strings.Builder
	sess, err := New(context.Background(), testConfig(), client, console.NewPrinter(&out), "task", "test", TierPremium)
	require.NoError(t, err)

	assert.Equal(t, TierStandard, sess.Tier())
	assert.Equal(t, "gpt-3.5-turbo", sess.Model())
	assert.Equal(t, 5, client.probeCalls)
	assert.Equal(t, 1, strings.Count(out.String(), "instead"))
}

func TestNewFallsBackWhenProbeExhausted(t *testing.T) {
	stubProbeSleep(t)
	client := &fakeClient{probeErrs: []error{
		rateLimited(), rateLimited(), rateLimited(), rateLimited(), rateLimited(),
	}}
	var out strings.Builder
	sess, err := New(context.Background(), testConfig(), client, console.NewPrinter(&out), "task", "test", TierPremium)
	require.NoError(t, err)

	assert.Equal(t, TierStandard, sess.Tier())
	assert.Equal(t, 5, client.probeCalls)
}

func TestNewStandardRequestedSkipsProbe(t *testing.T) {
	client := &fakeClient{}
	sess, err := New(context.Background(), testConfig(), client, nil, "task", "test", TierStandard)
	require.NoError(t, err)

	assert.Equal(t, TierStandard, sess.Tier())
	assert.Zero(t, client.probeCalls)
}

func TestNewMissingCredentialFailsBeforeAnyRequest(t *testing.T) {
	client := &fakeClient{}
	cfg := testConfig()
	cfg.OpenAI.APIKey = ""
	_, err := New(context.Background(), cfg, client, nil, "task", "test", TierPremium)

	var confErr *config.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Zero(t, client.probeCalls)
}

func TestRecordUsagePremiumCost(t *testing.T) {
	var out strings.Builder
	sess := &Session{
		printer: console.NewPrinter(&out),
		tier:    TierPremium,
		prices:  pricingFor(TierPremium),
	}
	// 8000 prompt chars = 2000 tokens at $0.03/1K, 4000 generation chars =
	// 1000 tokens at $0.06/1K: $0.060 + $0.060.
	sess.recordUsage(8000, 4000)
	assert.Contains(t, out.String(), "$0.120")

	promptChars, generationChars := sess.Usage()
	assert.Equal(t, 8000, promptChars)
	assert.Equal(t, 4000, generationChars)
}

func TestRecordUsageStandardCost(t *testing.T) {
	var out strings.Builder
	sess := &Session{
		printer: console.NewPrinter(&out),
		tier:    TierStandard,
		prices:  pricingFor(TierStandard),
	}
	sess.recordUsage(8000, 4000)
	assert.Contains(t, out.String(), "$0.006")
}

func TestRecordUsageCountersMonotonic(t *testing.T) {
	var out strings.Builder
	sess := &Session{
		printer: console.NewPrinter(&out),
		tier:    TierStandard,
		prices:  pricingFor(TierStandard),
	}
	previousPrompt, previousGeneration := 0, 0
	for _, counts := range [][2]int{{100, 50}, {300, 20}, {0, 0}, {7, 7}} {
		sess.recordUsage(counts[0], counts[1])
		promptChars, generationChars := sess.Usage()
		assert.GreaterOrEqual(t, promptChars, previousPrompt)
		assert.GreaterOrEqual(t, generationChars, previousGeneration)
		previousPrompt, previousGeneration = promptChars, generationChars
	}
	assert.Equal(t, 407, previousPrompt)
	assert.Equal(t, 77, previousGeneration)
}

func TestProbeStopsOnNonRetryableError(t *testing.T) {
	client := &fakeClient{probeErrs: []error{errors.New("connection refused")}}
	available := premiumAvailable(context.Background(), client, "gpt-4")
	assert.False(t, available)
	assert.Equal(t, 1, client.probeCalls)
}
