package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tsucho-dev/tsucho/internal/casework"
	"github.com/tsucho-dev/tsucho/internal/config"
	"github.com/tsucho-dev/tsucho/internal/gitops"
	"github.com/tsucho-dev/tsucho/internal/store"
)

// workspace is an opened data root.
type workspace struct {
	root  string
	cfg   *config.Config
	store store.Store
	svc   *casework.Service
}

// loadConfig reads tsucho.yaml from the data root and applies env overrides.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a tsucho data root (run `tsucho init` first)", root)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openWorkspace(opts *globalOptions) (*workspace, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Storage.Backend, root)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	svc := casework.NewService(st, casework.Options{
		Root:                 root,
		LargeAmountThreshold: cfg.Analysis.LargeAmountThreshold,
		Transfer:             cfg.TransferOptions(),
		AutoCommit:           cfg.Git.AutoCommit,
		Author:               gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
	})
	return &workspace{root: root, cfg: cfg, store: st, svc: svc}, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

var printer = message.NewPrinter(language.Japanese)

// yen formats an amount with thousands separators.
func yen(n int64) string {
	return printer.Sprintf("%d", n)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
