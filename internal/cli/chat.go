package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"devchat/internal/config"
	"devchat/internal/console"
	"devchat/internal/llm"
	"devchat/internal/session"

	"github.com/spf13/cobra"
)

type chatOptions struct {
	TaskFile string
	Test     string
	Model    string
	Examples []string
	URL      string
	Token    string
	Verbose  bool
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat [task...]",
		Short: "Start a code generation session for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.TaskFile, "file", "F", "", "task description file, use -F- for stdin")
	cmd.Flags().StringVar(&opts.Test, "test", "", "test criteria the generated service must satisfy")
	cmd.Flags().StringVar(&opts.Model, "model", "premium", "model tier (premium or standard)")
	cmd.Flags().StringSliceVar(&opts.Examples, "examples", nil, "example fragments for the system prompt (executor,docarray,client)")
	cmd.Flags().StringVar(&opts.URL, "url", "", "override base url")
	cmd.Flags().StringVar(&opts.Token, "token", "", "override access token")
	cmd.Flags().BoolVar(&opts.Verbose, "verbose", false, "echo system/user/assistant turns")
	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions, args []string) error {
	task, err := readInput(args, opts.TaskFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(task) == "" {
		return errors.New("task description is required")
	}

	tier, err := session.ParseTier(opts.Model)
	if err != nil {
		return err
	}
	names, err := parseExampleNames(opts.Examples)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.OpenAI.BaseURL = firstNonEmpty(opts.URL, cfg.OpenAI.BaseURL)
	cfg.OpenAI.APIKey = firstNonEmpty(opts.Token, cfg.OpenAI.APIKey)
	if opts.Verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL: cfg.OpenAI.BaseURL,
		Token:   cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.PremiumModel,
	})
	if err != nil {
		return err
	}

	printer := console.NewPrinter(cmd.OutOrStdout())
	sess, err := session.New(cmd.Context(), cfg, client, printer, task, opts.Test, tier)
	if err != nil {
		return err
	}
	conv, err := sess.Conversation(names)
	if err != nil {
		return err
	}
	return chatLoop(cmd.Context(), cmd.OutOrStdout(), promptSource(cmd, opts.TaskFile), conv, cfg.Verbose)
}

// promptSource picks where follow-up prompts come from. When the task was
// read from stdin (-F-), stdin is exhausted, so the loop reads from the
// terminal instead.
func promptSource(cmd *cobra.Command, taskFile string) io.Reader {
	if taskFile == "-" {
		return os.Stdin
	}
	return cmd.InOrStdin()
}

func chatLoop(ctx context.Context, out io.Writer, in io.Reader, conv *session.Conversation, verbose bool) error {
	fmt.Fprint(out, "> ")
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		if prompt == "exit" || prompt == "quit" {
			return nil
		}
		reply, err := conv.Chat(ctx, prompt)
		if err != nil {
			return err
		}
		if !verbose {
			fmt.Fprintln(out, reply)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func parseExampleNames(values []string) ([]session.ExampleName, error) {
	if values == nil {
		return nil, nil
	}
	names := make([]session.ExampleName, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		name, err := session.ParseExampleName(value)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func readInput(args []string, inputFile string, stdin io.Reader) (string, error) {
	if inputFile != "" && len(args) > 0 {
		return "", fmt.Errorf("input args and -F are mutually exclusive")
	}
	if inputFile == "" {
		if len(args) == 0 {
			return "", fmt.Errorf("missing task: provide args or -F")
		}
		return strings.Join(args, " "), nil
	}
	if inputFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return trimTrailingNewline(string(data)), nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return trimTrailingNewline(string(data)), nil
}

func trimTrailingNewline(value string) string {
	return strings.TrimRight(value, "\r\n")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
