package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rwx-research/tirag/internal/errors"
)

// Console reads lines from a plain stream such as a pipe. With echo set, every
// line read is written back after its prompt so transcripts read like a
// terminal session.
type Console struct {
	in   *bufio.Reader
	out  io.Writer
	echo bool
}

func NewConsole(in io.Reader, out io.Writer, echo bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, echo: echo}
}

func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}

	line = strings.TrimRight(line, "\r\n")
	if c.echo {
		fmt.Fprintln(c.out, line)
	}

	return line, nil
}

// TerminalReader provides line editing and history on an interactive terminal.
type TerminalReader struct {
	instance *readline.Instance
}

func NewTerminalReader(in io.ReadCloser, out io.Writer) (*TerminalReader, error) {
	instance, err := readline.NewEx(&readline.Config{
		Stdin:           in,
		Stdout:          out,
		InterruptPrompt: "^C",
		HistoryLimit:    200,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize the terminal")
	}

	return &TerminalReader{instance: instance}, nil
}

// ReadLine returns io.EOF on Ctrl-D. Ctrl-C discards the line being typed.
func (t *TerminalReader) ReadLine(prompt string) (string, error) {
	t.instance.SetPrompt(prompt)

	line, err := t.instance.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}

	return line, err
}

func (t *TerminalReader) Close() error {
	return t.instance.Close()
}
