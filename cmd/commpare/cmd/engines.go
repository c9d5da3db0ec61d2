package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rmera/commpare/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the engines and whether they can be run",
	RunE:  listEngines,
}

var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "List the reference systems and force fields that can be used",
	RunE:  listReferences,
}

// engineStatus gives the status column for the engine.
func engineStatus(name engine.Name, cfg *engine.Config) string {
	switch {
	case name.Reserved():
		return color.YellowString("reserved")
	case engine.Detect(name, cfg):
		return color.GreenString("available")
	default:
		return color.RedString("not found")
	}
}

func listEngines(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	color.NoColor = color.NoColor || noColor
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENGINE\tSTATUS")
	_, _ = fmt.Fprintln(w, "------\t------")
	for _, n := range engine.Names() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", n, engineStatus(n, cfg))
	}
	return w.Flush()
}

func listReferences(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	refs := engine.ReferenceSystems(cfg)
	ffs := engine.Forcefields(cfg)
	if len(refs) == 0 {
		fmt.Fprintln(out, "No reference systems found")
	} else {
		fmt.Fprintln(out, "Reference systems:")
		for _, r := range refs {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}
	if len(ffs) == 0 {
		fmt.Fprintln(out, "No force fields found")
		return nil
	}
	fmt.Fprintln(out, "Force fields:")
	for _, f := range ffs {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
