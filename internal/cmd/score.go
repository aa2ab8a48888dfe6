package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/engine"
	"github.com/docscore/docscore/internal/report"
)

var scoreCmd = &cobra.Command{
	Use:   "score <url|file>",
	Short: "Score one documentation page",
	Long: `Analyze a single page and print its AI-friendliness report.

The input can be a URL, a markdown file, or a normalized-content JSON
snapshot produced by an extraction pipeline.

Examples:
  docscore score https://docs.example.com/guides/sso
  docscore score page.md
  docscore score --format json snapshot.json > report.json`,
	Args:         cobra.ExactArgs(1),
	RunE:         runScore,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	nc, err := loadInput(cmd, args[0])
	if err != nil {
		return err
	}

	u := GetUI()
	progress := u.StartProgress()
	defer func() {
		if progress != nil {
			progress.Done(nil)
		}
	}()

	eng, cleanup, err := newEngine(func(ev engine.ProgressEvent) {
		progress.Publish(ev.Step, ev.Message, ev.Percent)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := eng.Score(cmd.Context(), nc)
	if err != nil {
		return fmt.Errorf("scoring %s: %w", args[0], err)
	}

	// Stop progress before writing the report.
	if progress != nil {
		progress.Done(nil)
		progress = nil
	}

	if verbose && r.Meta.ClaudeError != "" {
		fmt.Fprintln(os.Stderr, u.Styles.Warning.Render(
			fmt.Sprintf("%s semantic analysis failed: %s", u.Styles.IconWarning, r.Meta.ClaudeError),
		))
	}

	return report.New(format, os.Stdout).Export(r)
}

// loadInput resolves one CLI argument into normalized content: a URL
// is fetched, a .json file is parsed as a snapshot, anything else is
// treated as markdown.
func loadInput(cmd *cobra.Command, arg string) (*content.NormalizedContent, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		nc, err := content.FetchURL(cmd.Context(), arg)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", arg, err)
		}
		return nc, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", arg, err)
	}

	if strings.HasSuffix(arg, ".json") {
		nc, err := content.ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", arg, err)
		}
		return nc, nil
	}

	nc, err := content.ExtractMarkdown("file://"+arg, data)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", arg, err)
	}
	return nc, nil
}
