// Command duel-local plays a hot-seat duel in the terminal.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/park285/cheese-duel/internal/rules"
)

var (
	noColor = flag.Bool("nocolor", false, "disable ANSI colours")
	flip    = flag.Bool("flip", false, "draw the board from black's side")
)

const (
	exitOK = iota
	exitErr
)

func main() {
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}
	if err := play(os.Stdin, color.Output, *flip); err != nil {
		log.Println(err)
		os.Exit(exitErr)
	}
	os.Exit(exitOK)
}

// play reads one square per line until the king falls, "quit" or EOF.
func play(in io.Reader, out io.Writer, flipped bool) error {
	g := rules.NewGame()
	var last *rules.Move
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintln(out, draw(g, last, flipped))
		if w, over := g.Winner(); over {
			fmt.Fprintf(out, "%s wins by capturing the king.\n", w)
			return nil
		}
		fmt.Fprint(out, prompt(g))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		pos, err := rules.ParsePosition(line)
		if err != nil {
			fmt.Fprintf(out, "%q is not a square\n", line)
			continue
		}
		outcome := g.Select(pos)
		switch outcome.Kind {
		case rules.Selected:
			fmt.Fprintf(out, "%s selected, %d target(s)\n", pos, len(outcome.Targets))
		case rules.MoveApplied:
			last = outcome.Move
			fmt.Fprintf(out, "%s: %s (%s)\n", outcome.Move.Side, outcome.Move, outcome.Move.Effect)
		default:
			fmt.Fprintln(out, "no selection")
		}
	}
}

func prompt(g *rules.Game) string {
	if sel, _, ok := g.Selection(); ok {
		return fmt.Sprintf("%s [%s] to? ", g.Turn(), sel)
	}
	return fmt.Sprintf("%s select> ", g.Turn())
}
