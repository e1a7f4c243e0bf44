package main

import (
	"fmt"
	"os"
	"strings"

	"gamatrix/internal/query"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	compareUsers     []int
	compareMode      string
	compareExclude   []string
	compareSingle    bool
	compareInstalled bool
	compareExclusive bool
	compareRandom    bool
	compareJSON      bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "List the games a set of users own",
	Example: `  gamatrix compare --user 1 --user 2
  gamatrix compare --user 1 --user 2 --mode all --exclude-platform origin
  gamatrix compare --user 3 --exclusive --json`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntSliceVarP(&compareUsers, "user", "u", nil, "User id to compare (repeatable)")
	compareCmd.Flags().StringVarP(&compareMode, "mode", "m", string(query.ModeCommon), "common or all")
	compareCmd.Flags().StringSliceVar(&compareExclude, "exclude-platform", nil, "Platform to leave out (repeatable)")
	compareCmd.Flags().BoolVar(&compareSingle, "include-single-player", false, "Include single-player games")
	compareCmd.Flags().BoolVar(&compareInstalled, "installed-only", false, "Only games every user has installed")
	compareCmd.Flags().BoolVar(&compareExclusive, "exclusive", false, "Only games no other user owns")
	compareCmd.Flags().BoolVar(&compareRandom, "randomize", false, "Pick one game at random")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	mode, err := query.ParseMode(compareMode)
	if err != nil {
		return err
	}
	t, err := tooling()
	if err != nil {
		return err
	}
	defer t.Logger.Close()

	ctx, cancel := newContext()
	defer cancel()

	res, err := t.Catalog.Compare(ctx, query.Options{
		TargetUsers:         compareUsers,
		Mode:                mode,
		ExcludedPlatforms:   compareExclude,
		IncludeSinglePlayer: compareSingle,
		InstalledOnly:       compareInstalled,
		Exclusive:           compareExclusive,
		Randomize:           compareRandom,
	})
	if err != nil {
		return err
	}

	if compareJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Println(res.Caption)
	for _, g := range res.Games {
		line := fmt.Sprintf("  %s [%s]", g.Title, strings.Join(g.Platforms, ", "))
		if g.MaxPlayers != nil {
			line += fmt.Sprintf(" (max %d players)", *g.MaxPlayers)
		}
		fmt.Println(line)
	}
	return nil
}
