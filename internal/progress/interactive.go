// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

const interactiveHelp = `commands:
  c N       mark step N complete
  d N       toggle details of step N
  N         focus step N (1-5)
  ctrl+r    reset progress
  show      print the board
  q         quit
`

// Console drives a tracker from line-oriented input. Each line is a command
// or a key description understood by ParseKey.
type Console struct {
	Tracker *Tracker
	Catalog types.StepCatalog
	In      io.Reader
	Out     io.Writer

	details map[int]bool
	scanner *bufio.Scanner
}

// Run reads commands until EOF or "q".
func (c *Console) Run() error {
	c.details = make(map[int]bool)
	c.scanner = bufio.NewScanner(c.In)

	c.show()
	fmt.Fprint(c.Out, interactiveHelp)
	for {
		fmt.Fprint(c.Out, "> ")
		line, ok := c.readLine()
		if !ok {
			fmt.Fprintln(c.Out)
			return c.scanner.Err()
		}
		quit, err := c.handle(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

// Confirm implements Confirmer by reading a y/n answer from the input.
func (c *Console) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.Out, "%s [y/N] ", prompt)
	answer, ok := c.readLine()
	if !ok {
		return false, c.scanner.Err()
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (c *Console) handle(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "show":
		c.show()
		return false, nil
	case "help", "?":
		fmt.Fprint(c.Out, interactiveHelp)
		return false, nil
	case "c", "complete":
		step, ok := c.stepArg(fields)
		if !ok {
			return false, nil
		}
		return false, c.complete(step)
	case "d", "details":
		step, ok := c.stepArg(fields)
		if !ok {
			return false, nil
		}
		c.details[step] = !c.details[step]
		c.show()
		return false, nil
	}

	k, ok := ParseKey(line)
	if !ok {
		fmt.Fprintf(c.Out, "unknown command %q\n", line)
		return false, nil
	}
	switch a := ResolveKey(k); a.Kind {
	case ActionReset:
		return false, c.reset()
	case ActionFocus:
		c.focus(a.Step, a.Highlight)
	default:
		fmt.Fprintf(c.Out, "unknown command %q\n", line)
	}
	return false, nil
}

func (c *Console) stepArg(fields []string) (int, bool) {
	if len(fields) != 2 {
		fmt.Fprintf(c.Out, "usage: %s N\n", fields[0])
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || !ValidStep(n) {
		fmt.Fprintf(c.Out, "step must be 1-%d\n", types.StepCount)
		return 0, false
	}
	return n, true
}

func (c *Console) complete(step int) error {
	out, err := c.Tracker.MarkComplete(step)
	if err != nil {
		return err
	}
	if out.Newly {
		fmt.Fprintf(c.Out, "%s step %d completed\n", out.Flash, step)
	}
	c.show()
	if out.Celebrate {
		WriteCompletion(c.Out)
		// The completion dialog's reset still asks the usual question.
		ok, err := c.Confirm("Reset Progress?")
		if err != nil {
			return err
		}
		if ok {
			return c.reset()
		}
	}
	return nil
}

func (c *Console) reset() error {
	done, err := c.Tracker.Reset(c)
	if err != nil {
		return err
	}
	if done {
		fmt.Fprintln(c.Out, "progress reset")
		c.show()
	}
	return nil
}

func (c *Console) focus(step int, highlight time.Duration) {
	for _, s := range c.Catalog.Steps {
		if s.Number != step {
			continue
		}
		fmt.Fprintf(c.Out, ">> %d. %s (%s) [highlighted %s]\n", s.Number, s.Title, c.Tracker.Status(step), highlight)
		if s.Summary != "" {
			fmt.Fprintf(c.Out, "   %s\n", s.Summary)
		}
		return
	}
}

func (c *Console) show() {
	WriteBoard(c.Out, Render(c.Tracker, c.Catalog, RenderOptions{Details: c.details}))
}
