package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source answers the yes/no prompts that gate side-effecting release steps.
type Source interface {
	Confirm(prompt string) (bool, error)
}

// Interactive prompts on out and reads one reply line from in. The default
// answer is yes: only a reply whose first character is n or N declines.
// End of input counts as accepting the default.
type Interactive struct {
	in  *bufio.Reader
	out io.Writer
}

// NewInteractive wraps the given reader and writer, typically stdin and
// stdout.
func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{in: bufio.NewReader(in), out: out}
}

// Confirm displays the prompt and interprets one reply line.
func (i *Interactive) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(i.out, "%s [Y/n] ", prompt); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	line, err := i.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	reply := strings.TrimSpace(line)
	if reply == "" {
		return true, nil
	}
	return !strings.HasPrefix(strings.ToLower(reply), "n"), nil
}

var _ Source = (*Interactive)(nil)

// Always returns a source that answers every prompt the same way. It backs
// non-interactive invocations.
func Always(answer bool) Source {
	return alwaysSource(answer)
}

type alwaysSource bool

func (a alwaysSource) Confirm(string) (bool, error) {
	return bool(a), nil
}

// Script returns a source that replays a fixed answer sequence and fails once
// the sequence is exhausted. Tests use it to drive the pipeline
// deterministically.
func Script(answers ...bool) Source {
	return &scriptSource{answers: answers}
}

type scriptSource struct {
	answers []bool
	next    int
}

func (s *scriptSource) Confirm(prompt string) (bool, error) {
	if s.next >= len(s.answers) {
		return false, fmt.Errorf("no scripted answer for prompt %q", prompt)
	}
	answer := s.answers[s.next]
	s.next++
	return answer, nil
}
