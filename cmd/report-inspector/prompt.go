package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

var errInterrupted = errors.New("interrupted")

// prompter asks for one value, returning def when the answer is empty.
type prompter interface {
	Prompt(label, def string) (string, error)
	Close() error
}

type linePrompter struct {
	rl *readline.Instance
}

func newLinePrompter(in io.Reader, out io.Writer) (prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		Stdin:           io.NopCloser(in),
		Stdout:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start prompt: %w", err)
	}
	return &linePrompter{rl: rl}, nil
}

func (p *linePrompter) Prompt(label, def string) (string, error) {
	if def != "" {
		p.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", label, def))
	} else {
		p.rl.SetPrompt(label + ": ")
	}

	line, err := p.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", errInterrupted
	case errors.Is(err, io.EOF):
		return def, nil
	case err != nil:
		return "", err
	}

	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func (p *linePrompter) Close() error {
	return p.rl.Close()
}

// request holds the arguments shared by the page commands
type request struct {
	path   string
	page   int
	output string
	runs   int
}

// fill prompts for every argument of r the command uses, offering the
// current values as defaults.
func fill(p prompter, r *request, wantOutput, wantRuns bool) error {
	var err error
	if r.path, err = p.Prompt("PDF file", r.path); err != nil {
		return err
	}

	page, err := p.Prompt("Page index", strconv.Itoa(r.page))
	if err != nil {
		return err
	}
	if r.page, err = strconv.Atoi(page); err != nil {
		return fmt.Errorf("page index must be an integer, got %q", page)
	}

	if wantOutput {
		if r.output, err = p.Prompt("Output", r.output); err != nil {
			return err
		}
	}

	if wantRuns {
		runs, err := p.Prompt("Runs", strconv.Itoa(r.runs))
		if err != nil {
			return err
		}
		if r.runs, err = strconv.Atoi(runs); err != nil {
			return fmt.Errorf("runs must be an integer, got %q", runs)
		}
	}
	return nil
}
