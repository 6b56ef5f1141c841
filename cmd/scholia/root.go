package scholia

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "scholia",
		Short: "Scholia: school timetable graph builder",
		Long: `Scholia builds a school's academic calendar and timetable as a graph.

It reads the school, terms, weeks, days and periods tables from a workbook, a YAML
document or a directory of CSV files, derives the timetable hierarchy, links it to a
generic calendar layer and merges everything into Neo4j, LadybugDB or Badger.
Builds are idempotent and can be re-run whenever the source tables change.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scholia.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Store flags
	rootCmd.PersistentFlags().String("db-driver", "", "Graph store driver (neo4j, ladybug, badger)")
	rootCmd.PersistentFlags().String("db-uri", "", "Graph store URI (neo4j)")
	rootCmd.PersistentFlags().String("db-username", "", "Graph store username (neo4j)")
	rootCmd.PersistentFlags().String("db-password", "", "Graph store password (neo4j)")
	rootCmd.PersistentFlags().String("db-path", "", "Graph store path (ladybug, badger; empty badger path is in-memory)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("database.uri", rootCmd.PersistentFlags().Lookup("db-uri"))
	viper.BindPFlag("database.username", rootCmd.PersistentFlags().Lookup("db-username"))
	viper.BindPFlag("database.password", rootCmd.PersistentFlags().Lookup("db-password"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db-path"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory and the working directory with name ".scholia".
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".scholia")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
