package session

import (
	"context"

	"devchat/internal/console"
	"devchat/internal/llm"
)

type usageRecorder func(promptChars, generationChars int)

// Conversation holds one ordered transcript of user and assistant turns.
// The system message is fixed at creation and prepended to every request;
// it is never part of the transcript itself.
//
// A Conversation is not safe for concurrent use; callers serialize access.
type Conversation struct {
	id      string
	tier    Tier
	model   string
	client  llm.Client
	record  usageRecorder
	printer *console.Printer
	verbose bool

	systemMessage llm.Message
	transcript    []llm.Message
}

// Chat appends prompt as a user turn, sends the system message plus the
// full transcript to the backend and returns the assembled reply. The whole
// history is resent every call, so billed characters grow with turn count.
// Streamed deltas are echoed to the console as they arrive when verbose.
//
// On failure the just-appended user turn is rolled back and the error
// propagates, so a retried call does not duplicate history.
func (c *Conversation) Chat(ctx context.Context, prompt string) (string, error) {
	c.transcript = append(c.transcript, llm.Message{Role: "user", Content: prompt})
	if c.verbose {
		c.printer.User(prompt)
		c.printer.AssistantLabel()
	}

	messages := make([]llm.Message, 0, len(c.transcript)+1)
	messages = append(messages, c.systemMessage)
	messages = append(messages, c.transcript...)

	temperature := 0.0
	resp, err := c.client.ChatStream(ctx, llm.ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temperature,
	}, c.echo)
	if err != nil {
		c.transcript = c.transcript[:len(c.transcript)-1]
		return "", err
	}
	if c.verbose {
		c.printer.Newline()
	}

	promptChars := 0
	for _, message := range messages {
		promptChars += len(message.Content)
	}
	c.record(promptChars, len(resp.Content))

	c.transcript = append(c.transcript, llm.Message{Role: "assistant", Content: resp.Content})
	return resp.Content, nil
}

func (c *Conversation) echo(delta string) error {
	if c.verbose {
		c.printer.AssistantDelta(delta)
	}
	return nil
}

func (c *Conversation) ID() string {
	return c.id
}

func (c *Conversation) SystemMessage() string {
	return c.systemMessage.Content
}

// Transcript returns a copy of the user/assistant turns exchanged so far.
func (c *Conversation) Transcript() []llm.Message {
	transcript := make([]llm.Message, len(c.transcript))
	copy(transcript, c.transcript)
	return transcript
}
