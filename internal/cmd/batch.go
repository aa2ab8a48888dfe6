package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

var batchCmd = &cobra.Command{
	Use:   "batch <url|file>...",
	Short: "Score several pages and flag near-duplicate content",
	Long: `Score each input in sequence, then compare all pages pairwise and
flag those whose content overlaps enough to look duplicated.

Examples:
  docscore batch docs/*.md
  docscore batch --format json page1.md page2.md > batch.json`,
	Args:         cobra.MinimumNArgs(1),
	RunE:         runBatch,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	var pages []*content.NormalizedContent
	for _, arg := range args {
		nc, err := loadInput(cmd, arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", arg, err)
			continue
		}
		pages = append(pages, nc)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no readable inputs")
	}

	eng, cleanup, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := eng.ScoreBatch(cmd.Context(), pages)
	if err != nil {
		return err
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	u := GetUI()
	fmt.Println()
	fmt.Println(u.Styles.Header.Render(fmt.Sprintf("Scored %d pages", len(result.Reports))))
	for _, r := range result.Reports {
		title := r.Meta.Title
		if title == "" {
			title = r.Meta.URL
		}
		fmt.Printf("  %s  %s\n", u.Styles.ScoreBadge(r.CompositeScore, r.Status), title)
	}

	for url, msg := range result.Errors {
		fmt.Printf("  %s %s: %s\n", u.Styles.Critical.Render(u.Styles.IconCritical), url, msg)
	}

	if len(result.Duplicates) > 0 {
		fmt.Println()
		fmt.Println(u.Styles.Header.Render("Near-duplicate pages"))
		for _, d := range result.Duplicates {
			fmt.Printf("  %s %.0f%% overlap:\n    %s\n    %s\n",
				u.Styles.Warning.Render(u.Styles.IconWarning), d.Similarity*100, d.URLA, d.URLB)
		}
	}

	fmt.Println()
	fmt.Printf("Mean score: %.1f/10\n", meanComposite(result.Reports))
	return nil
}

func meanComposite(reports []*score.ScoreReport) float64 {
	if len(reports) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reports {
		sum += r.CompositeScore
	}
	return sum / float64(len(reports))
}
