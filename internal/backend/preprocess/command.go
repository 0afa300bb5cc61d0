package preprocess

// Command is a single step of the query preprocessing pipeline
type Command interface {
	Name() string
	Execute(sequence string) (string, error)
}

// CommandFactory creates a command from configuration parameters
type CommandFactory func(params map[string]any) (Command, error)

// CommandConfig is a named command with its parameters, as read from YAML
type CommandConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:",inline"`
}
