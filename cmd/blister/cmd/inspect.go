package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/blisterfmt/blister"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
)

var inspectStrict bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the contents of a playlist",
	Long: `Inspect decodes a .blist file and prints its metadata, its
beatmap entries and a content digest of the raw file.

Example:
  blister inspect my-favorites.blist`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		p, err := blister.Read(bytes.NewReader(raw), inspectStrict)
		if err != nil {
			return err
		}

		fmt.Printf("file:    %s (%d bytes, digest %016x)\n", args[0], len(raw), xxhash.Sum64(raw))
		fmt.Printf("title:   %s\n", p.Title)
		fmt.Printf("author:  %s\n", p.Author)
		if p.Description != nil {
			fmt.Printf("about:   %s\n", *p.Description)
		}
		if p.Cover != nil {
			fmt.Printf("cover:   %d bytes\n", len(p.Cover))
		}
		if p.CustomData.Len() > 0 {
			fmt.Printf("custom:  %d field(s)\n", p.CustomData.Len())
		}

		fmt.Printf("maps:    %d\n", len(p.Maps))
		for i := range p.Maps {
			bm := &p.Maps[i]
			fmt.Printf("  %4d. [%s] added %s %s\n", i+1, bm.Type, bm.DateAdded.Format("2006-01-02"), describeBeatmap(bm))
		}

		return nil
	},
}

func describeBeatmap(bm *blister.Beatmap) string {
	switch bm.Type {
	case blister.BeatmapTypeKey:
		return fmt.Sprintf("key %x", *bm.Key)
	case blister.BeatmapTypeHash:
		return bm.Hash.String()
	case blister.BeatmapTypeZip:
		return fmt.Sprintf("zip of %d bytes", len(bm.Zip))
	case blister.BeatmapTypeLevelID:
		return *bm.LevelID
	default:
		return fmt.Sprintf("%d custom field(s)", bm.CustomData.Len())
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectStrict, "strict", false, "Reject beatmaps with an unknown type")
}
