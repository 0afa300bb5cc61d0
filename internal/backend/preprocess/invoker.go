package preprocess

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrEmptyQuery is returned when nothing is left of the query after cleaning
var ErrEmptyQuery = errors.New("no valid query sequence")

// DefaultCommands is the cleaning pipeline used when the configuration names none
var DefaultCommands = []CommandConfig{
	{Name: StripFastaHeadersName},
	{Name: JoinLinesName},
	{Name: UppercaseName},
}

// CommandInvoker executes a sequence of commands on query text
type CommandInvoker struct {
	commands []Command
}

// NewCommandInvoker creates a new command invoker
func NewCommandInvoker(commands []Command) *CommandInvoker {
	return &CommandInvoker{
		commands: commands,
	}
}

// NewCommandInvokerFromConfig builds an invoker from named command configurations
func NewCommandInvokerFromConfig(registry *CommandRegistry, configs []CommandConfig) (*CommandInvoker, error) {
	commands := make([]Command, 0, len(configs))
	for idx, config := range configs {
		command, err := registry.Create(config.Name, config.Params)
		if err != nil {
			return nil, fmt.Errorf("command at index %d: %w", idx, err)
		}
		commands = append(commands, command)
	}
	return NewCommandInvoker(commands), nil
}

// Commands returns the names of the configured commands in execution order
func (i *CommandInvoker) Commands() []string {
	names := make([]string, len(i.commands))
	for idx, command := range i.commands {
		names[idx] = command.Name()
	}
	return names
}

// With returns a new invoker that runs the extra commands after the configured ones
func (i *CommandInvoker) With(extra ...Command) *CommandInvoker {
	commands := make([]Command, 0, len(i.commands)+len(extra))
	commands = append(commands, i.commands...)
	commands = append(commands, extra...)
	return NewCommandInvoker(commands)
}

// Execute applies all commands in order. An empty result is reported as ErrEmptyQuery.
func (i *CommandInvoker) Execute(text string) (string, error) {
	start := time.Now()
	current := text

	for idx, command := range i.commands {
		processed, err := command.Execute(current)
		if err != nil {
			slog.Error("preprocess command failed",
				"index", idx,
				"command_name", command.Name(),
				"error", err)
			return "", fmt.Errorf("command %s (index %d) failed: %w", command.Name(), idx, err)
		}
		slog.Debug("preprocess command completed",
			"index", idx,
			"command_name", command.Name(),
			"input_length", len(current),
			"output_length", len(processed))
		current = processed
	}

	slog.Debug("preprocess pipeline completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"command_count", len(i.commands),
		"final_length", len(current))

	if current == "" {
		return "", ErrEmptyQuery
	}
	return current, nil
}

// Clean runs the default cleaning pipeline, optionally followed by low-complexity masking
func Clean(text string, maskLowComplexity bool) (string, error) {
	invoker, err := NewCommandInvokerFromConfig(DefaultRegistry, DefaultCommands)
	if err != nil {
		return "", err
	}
	if maskLowComplexity {
		invoker = invoker.With(&MaskLowComplexityCommand{minRun: defaultMinRun})
	}
	return invoker.Execute(text)
}
