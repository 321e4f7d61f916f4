package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fv-go/internal/app"
	"fv-go/internal/config"
	"fv-go/internal/fv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

// newApp reads the config and creates an FVApp. The caller must defer app.Close().
// operation and parameters are recorded in the operation log by commands that change state.
func newApp(cmd *cobra.Command, operation string, parameters ...string) (*app.FVApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadOrDefault(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewFVApp(cfg, app.Options{
		Operation:  operation,
		Parameters: strings.Join(parameters, " "),
		Verbose:    verbose,
		Stderr:     os.Stderr,
		Passphrase: func() (string, error) { return readPassphrase("Passphrase: ") },
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "fv",
	Short:         "Per-file version history",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadOrDefault(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if _, err := os.Stat(defaults["config_path"]); err == nil {
			fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		} else {
			fmt.Printf("No configuration at %s, using defaults:\n\n", defaults["config_path"])
		}
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

var configKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		passphrase, err := readNewPassphrase()
		if err != nil {
			return err
		}
		if err := app.SetupEncryption(cfg, passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key: %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Snapshot a file if it changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "backup", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		v, err := a.Backup(args[0])
		if errors.Is(err, fv.ErrNoChange) {
			fmt.Println(describeError(err))
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Backup successful. Version: %s\n", v.VersionID)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list [NAME]",
	Short: "List the versions of a file, or all files with versions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "list", args...)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			printVersions(os.Stdout, a.ListVersions(args[0]))
			return nil
		}

		files := a.Files()
		if len(files) == 0 {
			fmt.Println("No files backed up.")
			return nil
		}
		for _, name := range files {
			fmt.Printf("%s\t%d version(s)\n", name, len(a.ListVersions(name)))
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore NAME VERSION",
	Short: "Restore a version of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")

		a, err := newApp(cmd, "restore", args...)
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := a.Restore(args[0], args[1], to)
		if err != nil {
			return err
		}

		fmt.Printf("Restored version %s to %s\n", args[1], dest)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete NAME VERSION",
	Short: "Delete a version of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "delete", args...)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Deleted version %s of file %s\n", args[1], args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-8s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "shell")
		if err != nil {
			return err
		}
		defer a.Close()

		sh := &shell{in: stdin, out: os.Stdout, store: a}
		return sh.run()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Copy log output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeygenCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().String("to", "", "Write the version to this path instead of the restore directory")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(shellCmd)
}
