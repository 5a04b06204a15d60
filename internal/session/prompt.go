package session

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/system.md
//go:embed templates/executor_example.md
//go:embed templates/docarray_example.md
//go:embed templates/client_example.md
var promptFS embed.FS

const systemTemplatePath = "templates/system.md"

type ExampleName string

const (
	ExampleExecutor ExampleName = "executor"
	ExampleDocArray ExampleName = "docarray"
	ExampleClient   ExampleName = "client"
)

// exampleOrder fixes the order fragments are appended, regardless of the
// order the caller named them.
var exampleOrder = []struct {
	name ExampleName
	path string
}{
	{ExampleExecutor, "templates/executor_example.md"},
	{ExampleDocArray, "templates/docarray_example.md"},
	{ExampleClient, "templates/client_example.md"},
}

func ParseExampleName(value string) (ExampleName, error) {
	switch ExampleName(strings.ToLower(strings.TrimSpace(value))) {
	case ExampleExecutor:
		return ExampleExecutor, nil
	case ExampleDocArray:
		return ExampleDocArray, nil
	case ExampleClient:
		return ExampleClient, nil
	default:
		return "", fmt.Errorf("unknown example name: %s", value)
	}
}

func renderSystemMessage(taskDescription, testDescription string, names []ExampleName) (string, error) {
	template, err := loadPrompt(systemTemplatePath)
	if err != nil {
		return "", err
	}
	replacer := strings.NewReplacer(
		"{{task_description}}", taskDescription,
		"{{test_description}}", testDescription,
	)
	var builder strings.Builder
	builder.WriteString(replacer.Replace(template))

	requested := make(map[ExampleName]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}
	for _, example := range exampleOrder {
		if !requested[example.name] {
			continue
		}
		fragment, err := loadPrompt(example.path)
		if err != nil {
			return "", err
		}
		builder.WriteString("\n")
		builder.WriteString(fragment)
	}
	return builder.String(), nil
}

func loadPrompt(path string) (string, error) {
	data, err := promptFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
