package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goran-ethernal/HolderIndexor/internal/config"
	"github.com/spf13/cobra"
)

func runPopulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		for _, c := range cfg.Collections {
			if c.IsEnabled() {
				names = append(names, c.Name)
			}
		}
	}
	if len(names) == 0 {
		return errors.New("no enabled collections configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var failed []string
	for _, name := range names {
		status, snapshot, err := a.orchestrator.Run(ctx, name, force)
		switch {
		case err != nil:
			fmt.Printf("%s: failed: %v\n", name, err)
			failed = append(failed, name)
		case snapshot == nil:
			fmt.Printf("%s: %s\n", name, status)
		default:
			fmt.Printf("%s: %d holders, live supply %d, burned %d, block %d\n",
				name, len(snapshot.Holders), snapshot.LiveSupply, snapshot.TotalBurned, snapshot.LastProcessedBlock)
		}

		if ctx.Err() != nil {
			break
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("population failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

func runCollections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tSTRATEGY\tTIERS\tENABLED")
	for _, c := range cfg.Collections {
		tiers := make([]string, 0, len(c.Tiers))
		for _, t := range c.Tiers {
			tiers = append(tiers, fmt.Sprintf("%s=%d", t.Name, t.Multiplier))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			c.Name, c.Address, c.RewardStrategy, strings.Join(tiers, ","), c.IsEnabled())
	}
	return w.Flush()
}

func runSchema(cmd *cobra.Command, args []string) error {
	out, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
