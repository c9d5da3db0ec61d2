package cmd

import (
	"github.com/rmera/commpare/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commpare",
	Short: "Compare energies across molecular mechanics engines",
	Long: `commpare evaluates the single-point energy of a structure with several
molecular mechanics engines (GROMACS, OpenMM, HOOMD, Cassandra) and reports
the energies split in bond, angle, dihedral, LJ, QQ, nonbond and total
components, all in kJ/mol, so the engines can be compared.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./commpare.yaml or $HOME/.commpare/commpare.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(referencesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig sets up the logger and reads the config file and the
// environment into the global viper.
func initConfig() {
	logger.SetLevel(logger.ParseLevel(logLevel))
	logger.SetNoColor(noColor)
	if err := setupViper(viper.GetViper(), cfgFile); err != nil {
		logger.Warnf("can't read config file: %v", err)
	}
}
