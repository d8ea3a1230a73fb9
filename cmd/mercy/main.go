// Command mercy is an interactive terminal tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/app"
	"github.com/xtding233/gacha-mercy/internal/config"
	"github.com/xtding233/gacha-mercy/internal/curve"
	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/tracker"
)

const usage = `commands:
  use <category>             switch the active category
  single [category]          record one draw
  ten [category]             record ten draws
  batch <n> [category]       record n draws
  reset [category]           reset pity
  inv <category> <+n|-n|n>   adjust or set shard inventory
  view [category]            show pity, chance and forecast
  curve                      draw the pity curve of the active category
  dash                       show totals and last hits
  theme <dark|light>
  help
  quit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("%v", err)
	}
	// keep the prompt readable; log lines go to stderr without timestamps
	logger := log.New(os.Stderr, "mercy: ", 0)
	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		config.Exitf("start: %v", err)
	}
	defer a.Close()

	if err := run(ctx, a.Tracker, os.Stdin, os.Stdout); err != nil {
		config.Exitf("%v", err)
	}
}

// run reads commands until quit or end of input.
func run(ctx context.Context, t *tracker.Tracker, in io.Reader, out io.Writer) error {
	p := newTermPrompter(in, out)
	fmt.Fprintln(out, usage)
	for {
		line, err := p.ask("%s> ", t.Active())
		if errors.Is(err, gacha.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := dispatch(ctx, t, p, out, fields); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, t *tracker.Tracker, p tracker.Prompter, out io.Writer, f []string) error {
	cat := func(i int) (gacha.Category, error) {
		if len(f) <= i {
			return t.Active(), nil
		}
		return gacha.ParseCategory(strings.Join(f[i:], " "))
	}
	switch f[0] {
	case "help":
		fmt.Fprintln(out, usage)
	case "use":
		c, err := cat(1)
		if err != nil {
			return err
		}
		return t.SetActive(c)
	case "single", "ten", "batch":
		n, at := 1, 1
		switch f[0] {
		case "ten":
			n = 10
		case "batch":
			if len(f) < 2 {
				return errors.New("usage: batch <n> [category]")
			}
			v, err := strconv.Atoi(f[1])
			if err != nil {
				return fmt.Errorf("%q is not a number", f[1])
			}
			n, at = v, 2
		}
		c, err := cat(at)
		if err != nil {
			return err
		}
		var o tracker.Outcome
		if f[0] == "single" {
			o, err = t.RecordSingle(ctx, c, p)
		} else {
			o, err = t.RecordBatch(ctx, c, n, p)
		}
		if err != nil {
			return err
		}
		printOutcome(out, o)
		return printView(out, t, c)
	case "reset":
		c, err := cat(1)
		if err != nil {
			return err
		}
		o, err := t.Reset(ctx, c, p)
		if err != nil {
			return err
		}
		printOutcome(out, o)
	case "inv":
		if len(f) != 3 {
			return errors.New("usage: inv <category> <+n|-n|n>")
		}
		c, err := gacha.ParseCategory(f[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(f[2])
		if err != nil {
			return fmt.Errorf("%q is not a number", f[2])
		}
		if strings.HasPrefix(f[2], "+") || strings.HasPrefix(f[2], "-") {
			err = t.AdjustInventory(c, n)
		} else {
			err = t.SetInventory(c, n)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s shards: %d\n", c.Title(), t.Inventory().Count(c))
	case "view":
		c, err := cat(1)
		if err != nil {
			return err
		}
		return printView(out, t, c)
	case "curve":
		fmt.Fprintln(out, t.Curve().String())
	case "dash":
		d := t.Dashboard()
		fmt.Fprintf(out, "Total pulls: %d\n", d.Stats.Total)
		for _, l := range d.LastHits {
			fmt.Fprintln(out, l)
		}
		for _, c := range t.Rules().Categories() {
			fmt.Fprintf(out, "%-8s pity %4d  shards %d\n", c.Title(), d.Pity[c], d.Inventory[c])
		}
		if len(d.Cycles) > 0 {
			fmt.Fprintf(out, "Last %d cycles: mean %.1f pulls\n", len(d.Cycles), d.CycleStats.Mean)
		}
	case "theme":
		if len(f) != 2 {
			return errors.New("usage: theme <dark|light>")
		}
		return t.SetTheme(ctx, curve.Theme(f[1]))
	default:
		return fmt.Errorf("unknown command %q (try help)", f[0])
	}
	return nil
}

func printOutcome(out io.Writer, o tracker.Outcome) {
	if o.Cycle != nil {
		fmt.Fprintf(out, "Cycle completed after %d pulls.\n", len(o.Cycle)-1)
	}
	if o.HardPityReached {
		fmt.Fprintf(out, "Hard pity: %s\n", o.Resolution)
	}
	if o.Warning != "" {
		fmt.Fprintf(out, "Warning: %s\n", o.Warning)
	}
}

func printView(out io.Writer, t *tracker.Tracker, c gacha.Category) error {
	v, err := t.View(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s shards (%d in inventory)\n", v.Title, v.Inventory)
	for _, tier := range v.Tiers {
		fmt.Fprintf(out, "  %s: %d\n", tier.Rarity.Title(), tier.Pity)
	}
	fmt.Fprintf(out, "  Chance: %.1f%%  %s\n", v.Chance, v.Outlook)
	fmt.Fprintf(out, "  Soft Pity: %d  Hard Pity: %d  Next: %s\n", v.SoftPity, v.HardPity, v.Milestone)
	fmt.Fprintf(out, "  Expected pulls to %s: %.1f (P90 %.0f), %.1f%% within 10\n",
		v.Primary.Title(), v.Forecast.Mean, v.Forecast.P90, v.WithinTen*100)
	if v.Warning != "" {
		fmt.Fprintf(out, "  Warning: %s\n", v.Warning)
	}
	return nil
}
