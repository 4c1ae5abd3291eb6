package cmd

import (
	"fmt"
	"os"

	"github.com/blisterfmt/blister"
	"github.com/spf13/cobra"
)

var (
	newTitle  string
	newAuthor string
	newLevel  int
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <out.blist>",
	Short: "Create an empty playlist",
	Long: `New writes an empty playlist with the given title and author.

Example:
  blister new practice.blist --title "Practice" --author me`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := blister.New(newTitle, newAuthor)

		if err := writeAtomic(args[0], func(f *os.File) error {
			return p.Write(f, newLevel)
		}); err != nil {
			return err
		}

		fmt.Printf("Created %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newTitle, "title", "", "Playlist title")
	newCmd.Flags().StringVar(&newAuthor, "author", "", "Playlist author")
	newCmd.Flags().IntVar(&newLevel, "level", blister.DefaultCompression, "Compression level")
	_ = newCmd.MarkFlagRequired("title")
	_ = newCmd.MarkFlagRequired("author")
}
