package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blister",
	Short: "blister - binary Beat Saber playlists",
	Long: `blister inspects, creates and converts binary Beat Saber
playlists (.blist files, magic "Blist.v3").`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeAtomic writes via a uniquely named sibling temp file and
// renames it into place, so a failed write never leaves a truncated
// playlist behind.
func writeAtomic(path string, write func(f *os.File) error) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), ksuid.New().String()))

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
