package preprocess

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	StripFastaHeadersName = "StripFastaHeaders"
	JoinLinesName         = "JoinLines"
	UppercaseName         = "Uppercase"
	MaskLowComplexityName = "MaskLowComplexity"

	defaultMinRun         = 4
	defaultHeaderPrefixes = ">;"
)

// StripFastaHeadersCommand drops lines starting with any of its prefix characters,
// FASTA descriptor and comment lines by default
type StripFastaHeadersCommand struct {
	prefixes string
}

func NewStripFastaHeadersCommand(params map[string]any) (Command, error) {
	prefixes := GetStringParam(params, "prefixes", defaultHeaderPrefixes)
	if strings.TrimSpace(prefixes) == "" {
		return nil, fmt.Errorf("invalid prefixes: must name at least one character")
	}
	return &StripFastaHeadersCommand{prefixes: prefixes}, nil
}

func (c *StripFastaHeadersCommand) Name() string { return StripFastaHeadersName }

func (c *StripFastaHeadersCommand) Execute(sequence string) (string, error) {
	lines := strings.Split(sequence, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && strings.ContainsRune(c.prefixes, []rune(trimmed)[0]) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}

// JoinLinesCommand concatenates all lines and removes every whitespace character.
// With stripNumbers it also drops digits, so numbered GenBank or EMBL blocks can be pasted.
type JoinLinesCommand struct {
	stripNumbers bool
}

func NewJoinLinesCommand(params map[string]any) (Command, error) {
	return &JoinLinesCommand{stripNumbers: GetBoolParam(params, "stripNumbers", false)}, nil
}

func (c *JoinLinesCommand) Name() string { return JoinLinesName }

func (c *JoinLinesCommand) Execute(sequence string) (string, error) {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || (c.stripNumbers && unicode.IsDigit(r)) {
			return -1
		}
		return r
	}, sequence), nil
}

// UppercaseCommand upper-cases the sequence
type UppercaseCommand struct{}

func NewUppercaseCommand(params map[string]any) (Command, error) {
	return &UppercaseCommand{}, nil
}

func (c *UppercaseCommand) Name() string { return UppercaseName }

func (c *UppercaseCommand) Execute(sequence string) (string, error) {
	return strings.ToUpper(sequence), nil
}

// MaskLowComplexityCommand collapses runs of identical residues to a single residue.
// This is a blunt repeat filter, not a windowed complexity measure such as SEG.
type MaskLowComplexityCommand struct {
	minRun int
}

func NewMaskLowComplexityCommand(params map[string]any) (Command, error) {
	minRun := GetIntParam(params, "minRun", defaultMinRun)
	if minRun < 2 {
		return nil, fmt.Errorf("invalid minRun: %d (must be >= 2)", minRun)
	}
	return &MaskLowComplexityCommand{minRun: minRun}, nil
}

func (c *MaskLowComplexityCommand) Name() string { return MaskLowComplexityName }

// MinRun returns the shortest run length that gets collapsed
func (c *MaskLowComplexityCommand) MinRun() int { return c.minRun }

func (c *MaskLowComplexityCommand) Execute(sequence string) (string, error) {
	runes := []rune(sequence)
	var b strings.Builder
	b.Grow(len(sequence))

	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= c.minRun {
			b.WriteRune(runes[i])
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String(), nil
}
