package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevinjoyner/marty-financial-planner/internal/config"
	"github.com/kevinjoyner/marty-financial-planner/internal/engine"
	"github.com/kevinjoyner/marty-financial-planner/internal/output"
)

// zapLogger implements engine.Logger on a zap sugared logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l zapLogger) Infof(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l zapLogger) Warnf(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l zapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Personal finance projection CLI",
	Long:  "Monthly cash-flow and net-worth projection for UK personal finance scenarios",
}

var projectCmd = &cobra.Command{
	Use:   "project [scenario-file]",
	Short: "Run a monthly projection over a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		months, _ := cmd.Flags().GetInt("months")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")
		verbose, _ := cmd.Flags().GetBool("verbose")

		zl, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialise logger: %w", err)
		}
		defer zl.Sync()

		parser := config.NewInputParser()
		scenario, err := parser.LoadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}

		eng := engine.NewEngine()
		if verbose {
			eng.SetLogger(zapLogger{s: zl.Sugar()})
		}

		result, err := eng.RunProjection(scenario, months, nil)
		if err != nil {
			return fmt.Errorf("projection failed: %w", err)
		}

		formatter, err := output.NewFormatter(format)
		if err != nil {
			return err
		}
		rendered, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("failed to render %s output: %w", formatter.Name(), err)
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, rendered, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Printf("Wrote %s report to %s\n", formatter.Name(), outPath)
			return nil
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "planner %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Version)
			}
		},
	}
}

func init() {
	projectCmd.Flags().IntP("months", "m", 120, "number of months to project")
	projectCmd.Flags().StringP("format", "f", "console", "output format: console, csv, json")
	projectCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	projectCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
