// Package shell implements the line-oriented CLI facade described in §6:
// a ">>> " prompt over stdin dispatching init/ask/kill/exit onto the
// orchestrator's local node API.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// Dispatcher is the subset of orchestrator.Orchestrator the shell depends
// on, kept as an interface so the shell can be tested without spawning
// real nodes.
type Dispatcher interface {
	Initialize(name string)
	Ask(names ...string)
	Kill(names ...string)
	AskRandom() context.CancelFunc
	KillRandom() context.CancelFunc
}

const prompt = ">>> "

const usage = `usage:
  init <name>
  ask <name...|random>
  kill <name...|random>
  exit`

// Shell reads commands from in, writes the prompt and usage errors to out,
// and dispatches onto target until it reads "exit" or the input closes.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	target Dispatcher
	log    types.Logger

	askRandomCancel  context.CancelFunc
	killRandomCancel context.CancelFunc
}

// New builds a Shell over in/out dispatching onto target.
func New(in io.Reader, out io.Writer, target Dispatcher, log types.Logger) *Shell {
	return &Shell{
		in:     bufio.NewScanner(in),
		out:    out,
		target: target,
		log:    log,
	}
}

// Run reads and dispatches commands until exit is issued or input is
// exhausted. Returns the process exit code: 0 on a clean exit command,
// 0 on EOF (there is nothing left to do but stop).
func (s *Shell) Run() int {
	for {
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			return 0
		}

		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		command, args := fields[0], fields[1:]

		switch command {
		case "init":
			if len(args) != 1 {
				fmt.Fprintln(s.out, usage)
				continue
			}
			s.target.Initialize(args[0])

		case "ask":
			if len(args) == 0 {
				fmt.Fprintln(s.out, usage)
				continue
			}
			if len(args) == 1 && args[0] == "random" {
				s.restartAskRandom()
				continue
			}
			s.target.Ask(args...)

		case "kill":
			if len(args) == 0 {
				fmt.Fprintln(s.out, usage)
				continue
			}
			if len(args) == 1 && args[0] == "random" {
				s.restartKillRandom()
				continue
			}
			s.target.Kill(args...)

		case "exit":
			s.stopBackgroundLoops()
			return 0

		default:
			fmt.Fprintln(s.out, usage)
		}
	}
}

func (s *Shell) restartAskRandom() {
	if s.askRandomCancel != nil {
		s.askRandomCancel()
	}
	s.askRandomCancel = s.target.AskRandom()
}

func (s *Shell) restartKillRandom() {
	if s.killRandomCancel != nil {
		s.killRandomCancel()
	}
	s.killRandomCancel = s.target.KillRandom()
}

func (s *Shell) stopBackgroundLoops() {
	if s.askRandomCancel != nil {
		s.askRandomCancel()
	}
	if s.killRandomCancel != nil {
		s.killRandomCancel()
	}
}
