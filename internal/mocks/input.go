package mocks

import "io"

// Input replays Lines and then reports io.EOF. Every prompt shown is kept.
type Input struct {
	Lines   []string
	Prompts []string
}

func NewInput(lines ...string) *Input {
	return &Input{Lines: lines}
}

func (i *Input) ReadLine(prompt string) (string, error) {
	i.Prompts = append(i.Prompts, prompt)
	if len(i.Lines) == 0 {
		return "", io.EOF
	}

	line := i.Lines[0]
	i.Lines = i.Lines[1:]
	return line, nil
}
