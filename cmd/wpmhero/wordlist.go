package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wpmhero/internal/config"
	"github.com/verte-zerg/wpmhero/internal/wordfreq"
	"github.com/verte-zerg/wpmhero/internal/wordlist"
)

const defaultWordListSize = 10000

var (
	wordlistSize  int
	wordlistForce bool
)

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Manage practice word lists",
	}
	install := &cobra.Command{
		Use:   "install <lang>[,<lang>...]|all",
		Short: "Build word lists from the wordfreq dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runWordlistInstallCmd,
	}
	install.Flags().IntVar(&wordlistSize, "size", defaultWordListSize, "number of words per list")
	install.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing lists")
	cmd.AddCommand(install)
	return cmd
}

func runWordlistInstallCmd(cmd *cobra.Command, args []string) error {
	if wordlistSize <= 0 {
		return errors.New("--size must be greater than 0")
	}
	src := wordfreq.Source{CacheDir: config.DefaultWordfreqCacheDir()}
	return installWordLists(cmd.Context(), src, config.DefaultWordListDir(), args[0], wordlistSize, wordlistForce)
}

// installWordLists writes <dir>/<lang>.txt for every requested language plus
// the dataset attribution files.
func installWordLists(ctx context.Context, src wordfreq.Source, dir, spec string, size int, force bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logErrln("Fetching wordfreq metadata...")
	wheel, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to download wordfreq: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wordfreq %s\n", wheel.Version)
	} else {
		logErrf("Downloaded wordfreq %s\n", wheel.Version)
	}

	catalog, err := wordfreq.ReadCatalog(wheel.Path)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	langs, all, err := resolveWordListLangs(spec, catalog.Languages())
	if err != nil {
		return err
	}

	written := 0
	for _, lang := range langs {
		path := filepath.Join(dir, lang+".txt")
		if !force {
			if _, err := os.Stat(path); err == nil {
				if all {
					logErrf("Skipping %s (already installed)\n", lang)
					continue
				}
				return fmt.Errorf("word list already exists: %s (use --force to overwrite)", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat word list: %w", err)
			}
		}
		table, _ := catalog.Size(lang)
		words, err := wordfreq.Extract(wheel.Path, lang, table, size)
		if err != nil {
			if all {
				logErrf("Skipping %s: %v\n", lang, err)
				continue
			}
			return fmt.Errorf("failed to extract %s word list: %w", lang, err)
		}
		if err := wordlist.Save(path, words); err != nil {
			return err
		}
		written++
		logErrf("Wrote %s (%d words)\n", path, len(words))
	}
	if written == 0 {
		return nil
	}
	if err := wordfreq.WriteAttribution(wheel.Path, dir); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	return nil
}

// resolveWordListLangs expands "all" or a comma separated list, checking each
// code against the dataset.
func resolveWordListLangs(spec string, available []string) ([]string, bool, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "all" {
		return available, true, nil
	}
	known := make(map[string]struct{}, len(available))
	for _, lang := range available {
		known[lang] = struct{}{}
	}
	var langs []string
	for _, part := range strings.Split(spec, ",") {
		lang := strings.TrimSpace(part)
		if lang == "" {
			continue
		}
		if _, ok := known[lang]; !ok {
			return nil, false, fmt.Errorf("unknown language %q (available: %s)", lang, strings.Join(available, ", "))
		}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return nil, false, errors.New("no language given")
	}
	return langs, false, nil
}
