package cmd

import (
	"fmt"
	"os"

	"github.com/blisterfmt/blister"
	"github.com/spf13/cobra"
)

var convertLevel int

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <in.json> <out.blist>",
	Short: "Convert a legacy JSON playlist to the binary format",
	Long: `Convert reads a legacy JSON playlist (playlistTitle /
playlistAuthor / songs) and writes it as a binary .blist file.

Example:
  blister convert my-favorites.json my-favorites.blist`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		p, err := blister.ConvertJSON(raw)
		if err != nil {
			return err
		}

		if err := writeAtomic(args[1], func(f *os.File) error {
			return p.Write(f, convertLevel)
		}); err != nil {
			return err
		}

		fmt.Printf("Converted %q with %d map(s) to %s\n", p.Title, len(p.Maps), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().IntVar(&convertLevel, "level", blister.DefaultCompression, "Compression level")
}
