// assetkeys maintains the integrity sidecars of the game's Static assets.
//
// Usage:
//
//	assetkeys list     - List the manifest entries
//	assetkeys build    - Hash every Static asset and write its sidecar
//	assetkeys verify   - Check every Static asset against its sidecar
//
// Global flags:
//
//	--root <dir>     - Asset root holding AssetLists.txt (default: assets)
//	--keys <dir>     - Sidecar directory (default: <root>/../keys)
//	--workers <n>    - Parallel hashing workers (default: number of CPUs)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/millennium-run/common"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/spf13/cobra"
)

var (
	flagRoot    string
	flagKeys    string
	flagWorkers int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "assetkeys",
	Short:        "Build and verify asset integrity sidecars",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "assets", "Asset root holding "+assets.ManifestName)
	rootCmd.PersistentFlags().StringVar(&flagKeys, "keys", "", "Sidecar directory (default <root>/../keys)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Parallel hashing workers")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(verifyCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the manifest entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := readManifest(flagRoot)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "  %-8s %s\n", e.Kind, e.Path)
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Hash every Static asset and write its sidecar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := build(flagRoot, keysDir(), flagWorkers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sidecars to %s\n", n, keysDir())
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every Static asset against its sidecar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bad, err := verify(flagRoot, keysDir(), flagWorkers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, b := range bad {
			fmt.Fprintf(out, "  FAIL %s\n", b)
		}
		if len(bad) > 0 {
			return fmt.Errorf("%d static assets do not match their keys", len(bad))
		}
		fmt.Fprintln(out, "all static assets match")
		return nil
	},
}

func keysDir() string {
	return common.Coalesce(flagKeys, filepath.Join(flagRoot, "..", "keys"))
}

func readManifest(root string) ([]assets.Entry, error) {
	f, err := os.Open(filepath.Join(root, assets.ManifestName))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ParseManifest(f)
}

func staticPaths(entries []assets.Entry) []string {
	var paths []string
	for _, e := range entries {
		if e.Kind == assets.Static {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// build writes a sidecar for every Static asset and returns how many were written.
func build(root, keys string, workers int) (int, error) {
	entries, err := readManifest(root)
	if err != nil {
		return 0, err
	}
	paths := staticPaths(entries)
	for _, err := range assets.ForEach(paths, workers, func(rel string) error {
		return assets.WriteSidecar(root, keys, rel)
	}) {
		if err != nil {
			return 0, err
		}
	}
	return len(paths), nil
}

// verify returns the Static assets whose content does not match their sidecar.
func verify(root, keys string, workers int) ([]string, error) {
	entries, err := readManifest(root)
	if err != nil {
		return nil, err
	}
	paths := staticPaths(entries)
	var bad []string
	for i, err := range assets.ForEach(paths, workers, func(rel string) error {
		return assets.VerifyFile(root, keys, rel)
	}) {
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s: %v", paths[i], err))
		}
	}
	return bad, nil
}
