package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/tracker"
)

// termPrompter asks questions on out and reads answers line by line. An
// empty answer to a yes/no or choice question, "c" or end of input cancels.
type termPrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newTermPrompter(in io.Reader, out io.Writer) *termPrompter {
	return &termPrompter{in: bufio.NewScanner(in), out: out}
}

func (p *termPrompter) ask(format string, args ...any) (string, error) {
	fmt.Fprintf(p.out, format, args...)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", gacha.ErrCancelled
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// PickHits reads space or comma separated positions. "-" means no hits.
func (p *termPrompter) PickHits(size, start, end int) ([]int, error) {
	for {
		line, err := p.ask("Hits in positions %d-%d (e.g. \"3 7\", \"-\" for none, \"c\" to cancel): ", start, end)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "c", "cancel":
			return nil, gacha.ErrCancelled
		case "", "-", "none":
			return nil, nil
		}
		positions, err := parsePositions(line, start, end)
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		return positions, nil
	}
}

func parsePositions(line string, start, end int) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a position", f)
		}
		if n < start || n > end {
			return nil, fmt.Errorf("position %d is not in %d-%d", n, start, end)
		}
		out = append(out, n)
	}
	return out, nil
}

func (p *termPrompter) PickRarity(position int, choices []gacha.Rarity) (gacha.Rarity, error) {
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.Title()
	}
	for {
		line, err := p.ask("Rarity at position %d [%s]: ", position, strings.Join(names, "/"))
		if err != nil {
			return gacha.RarityNone, err
		}
		if strings.EqualFold(line, "c") || strings.EqualFold(line, "cancel") {
			return gacha.RarityNone, gacha.ErrCancelled
		}
		r, err := gacha.ParseRarity(line)
		if err == nil && contains(choices, r) {
			return r, nil
		}
		fmt.Fprintf(p.out, "choose one of %s\n", strings.Join(names, ", "))
	}
}

func contains(rs []gacha.Rarity, r gacha.Rarity) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func (p *termPrompter) CorrectInventory(cat gacha.Category, tracked, requested int) (int, error) {
	fmt.Fprintf(p.out, "You are trying to pull more shards than you currently have tracked.\n"+
		"Tracked: %d\nRequested pulls: %d\n", tracked, requested)
	for {
		line, err := p.ask("How many %s shards do you actually have in-game right now? (blank to cancel) ", cat.Title())
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, gacha.ErrCancelled
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintln(p.out, "enter a whole number >= 0")
	}
}

func (p *termPrompter) ConfirmReset(cat gacha.Category) (bool, error) {
	line, err := p.ask("Reset %s pity? This action cannot be undone. [y/N] ", cat.Title())
	if err != nil {
		return false, err
	}
	return strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"), nil
}

func (p *termPrompter) ResolveHardPity(cat gacha.Category, rarity gacha.Rarity) (tracker.HardPityChoice, error) {
	fmt.Fprintf(p.out, "You have reached or exceeded the Hard Pity Level.\n"+
		"A guaranteed %s should have occurred.\n", rarity.Title())
	for {
		line, err := p.ask("Record hit, reset pity or cancel? [record/reset/cancel] ")
		if err != nil {
			return tracker.HardPityCancel, err
		}
		choice, err := tracker.ParseHardPityChoice(line)
		if err == nil {
			return choice, nil
		}
		fmt.Fprintln(p.out, err)
	}
}
