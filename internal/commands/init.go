package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/config"
	"github.com/tsucho-dev/tsucho/internal/gitops"
	"github.com/tsucho-dev/tsucho/internal/store"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var backend string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tsucho data root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.root
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, backend, !noGit)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", store.BackendCSV, "storage backend (csv or sqlite)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(w io.Writer, dir, backend string, withGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	for _, d := range []string{store.CasesDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Storage.Backend = backend
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	st, err := store.Open(backend, dir)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, store.CasesDir, ".gitkeep"), nil, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !withGit {
		fmt.Fprintf(w, "Initialized tsucho data root at %s\n", dir)
		return nil
	}
	if _, err := exec.LookPath("git"); err != nil {
		fmt.Fprintf(w, "Initialized tsucho data root at %s (git not found, evidence trail disabled)\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: tsucho data root", author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(w, "Initialized tsucho data root at %s (%s)\n", dir, hash)
	return nil
}
