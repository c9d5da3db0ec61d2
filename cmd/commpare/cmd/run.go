package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rmera/commpare/chemplot"
	"github.com/rmera/commpare/compare"
	"github.com/rmera/commpare/engine"
	"github.com/rmera/commpare/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compare the energy of a structure across engines",
	Long: `Run obtains the single-point energy of the structure given as a GROMACS
gro/top pair with each of the requested engines (all the available ones by
default) and prints the energies side by side.`,
	RunE: runCompare,
}

func init() {
	runCmd.Flags().String("gro", "", "GROMACS coordinate file")
	runCmd.Flags().String("top", "", "GROMACS topology file")
	runCmd.Flags().StringSliceP("engines", "e", nil, "engines to run (default: all the available ones)")
	runCmd.Flags().StringSliceP("define", "D", nil, "preprocessor symbols defined while reading the topology")
	runCmd.Flags().Int("round", -1, "round coordinates to this many decimal places (A) before running")
	runCmd.Flags().StringP("format", "f", "text", "output format (text, csv, yaml)")
	runCmd.Flags().Bool("spread", true, "add a max-min row to the text output")
	runCmd.Flags().String("plot", "", "save a bar chart of the energies to this file (png, svg, pdf)")
	runCmd.Flags().String("keep-artifacts", "", "archive the input and output files of each engine in this directory")
	runCmd.Flags().BoolP("interactive", "i", false, "choose the engines among the available ones")
	runCmd.Flags().Duration("timeout", 0, "time limit for each program run (0 means none)")
	_ = runCmd.MarkFlagRequired("gro")
	_ = runCmd.MarkFlagRequired("top")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if flags.Changed("keep-artifacts") {
		cfg.KeepArtifacts, _ = flags.GetString("keep-artifacts")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}

	gro, _ := flags.GetString("gro")
	topname, _ := flags.GetString("top")
	defines, _ := flags.GetStringSlice("define")
	st, err := engine.LoadStructure(gro, topname, defines...)
	if err != nil {
		return fmt.Errorf("failed to load structure: %w", err)
	}

	enames, _ := flags.GetStringSlice("engines")
	names, err := engine.ParseNames(enames)
	if err != nil {
		return err
	}
	if interactive, _ := flags.GetBool("interactive"); interactive {
		names, err = selectEngines(cfg)
		if err != nil {
			return fmt.Errorf("failed to select engines: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []compare.Option{compare.WithConfig(cfg)}
	if round, _ := flags.GetInt("round"); round >= 0 {
		opts = append(opts, compare.WithRoundDecimal(round))
	}
	logger.LogSection(fmt.Sprintf("Comparing %s", filepath.Base(gro)))
	start := time.Now()
	table, err := compare.SpawnEngineSimulations(ctx, st, names, opts...)
	if table != nil && len(table.Reports) > 0 {
		spread, _ := flags.GetBool("spread")
		if werr := writeTable(cmd.OutOrStdout(), table, format, spread); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("comparison stopped: %w", err)
	}
	if len(table.Reports) == 0 {
		logger.Warn("no engine could be run")
		return nil
	}
	logger.Successf("%d engines compared in %s", len(table.Reports), time.Since(start).Round(time.Millisecond))

	if plotname, _ := flags.GetString("plot"); plotname != "" {
		if err := chemplot.EnergyBars(table, filepath.Base(gro), plotname); err != nil {
			return fmt.Errorf("failed to plot: %w", err)
		}
		logger.Infof("plot saved to %s", plotname)
	}
	return nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "csv", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown output format %q, use text, csv or yaml", format)
	}
}

func writeTable(w io.Writer, table *compare.Table, format string, spread bool) error {
	switch format {
	case "csv":
		return table.WriteCSV(w)
	case "yaml":
		return table.WriteYAML(w)
	default:
		return table.WriteText(w, spread)
	}
}

// selectEngines asks the user to pick among the available engines.
func selectEngines(cfg *engine.Config) ([]engine.Name, error) {
	logger.Progress("Looking for engines...")
	avail := engine.Available(cfg)
	if len(avail) == 0 {
		return nil, fmt.Errorf("no engine available")
	}
	options := make([]string, len(avail))
	for i, n := range avail {
		options[i] = n.String()
	}
	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select engines:",
		Options: options,
		Default: options,
	}
	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	return engine.ParseNames(selected)
}
