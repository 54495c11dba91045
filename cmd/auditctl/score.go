package main

import (
	"adaudit/internal/model"
	"adaudit/internal/scoring"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scoreGroup = &cobra.Group{
	ID:    "score",
	Title: "Scoring",
}

// answerFile is the on-disk form of a filled-in audit
type answerFile struct {
	BusinessModel model.BusinessModel `yaml:"businessModel"`
	Channel       model.Channel       `yaml:"channel"`
	Answers       map[string]int      `yaml:"answers"`
}

func newScoreCmd() *cobra.Command {
	var (
		bm      string
		ch      string
		asJSON  bool
		partial bool
	)
	cmd := &cobra.Command{
		Use:     "score ANSWERS.yaml",
		GroupID: scoreGroup.ID,
		Short:   "Score an answers file",
		Long: `Scores a YAML file of question id to option index against the catalog and prints
the percentage, verdict and triggered action plans. --model and --channel override
the values in the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var f answerFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if bm != "" {
				f.BusinessModel = model.BusinessModel(bm)
			}
			if ch != "" {
				f.Channel = model.Channel(ch)
			}
			if f.Channel == "" {
				f.Channel = model.ChannelBoth
			}

			questions, err := cat.Questions(f.BusinessModel, f.Channel)
			if err != nil {
				return err
			}
			collector := scoring.NewCollector(questions, nil)
			for id, opt := range f.Answers {
				if err := collector.SetAnswer(id, opt); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
			}
			if !partial && !collector.IsComplete() {
				return fmt.Errorf("%w: %d of %d answered (use --partial to score anyway)",
					scoring.ErrIncompleteSubmission, collector.Len(), len(questions))
			}

			res := scoring.Score(questions, collector.Answers())
			preview := model.ScorePreview{Result: res, Verdict: scoring.Classify(res.Percentage)}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}
			printReport(cmd.OutOrStdout(), preview)
			return nil
		},
	}
	cmd.Flags().StringVar(&bm, "model", "", "business model, overrides the file")
	cmd.Flags().StringVar(&ch, "channel", "", "channel, overrides the file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&partial, "partial", false, "score even when some questions are unanswered")
	return cmd
}

func printReport(out io.Writer, p model.ScorePreview) {
	fmt.Fprintf(out, "Score: %d%% (%d/%d, %d of %d answered)\n",
		p.Percentage, p.TotalScore, p.MaxPossibleScore, p.AnsweredQuestions, p.TotalQuestions)
	fmt.Fprintf(out, "Verdict: %s - %s\n", p.Verdict.Title, p.Verdict.Message)
	if len(p.Risks) == 0 {
		return
	}
	fmt.Fprintf(out, "\nRisks (%d):\n", len(p.Risks))
	for _, r := range p.Risks {
		fmt.Fprintf(out, "\n[%s] %s\n", r.Plan.Severity, r.Plan.Title)
		if r.QuestionPrompt != "" {
			fmt.Fprintf(out, "  Q: %s\n  A: %s\n", r.QuestionPrompt, r.ChosenLabel)
		}
		if excuse := r.Plan.Excuse(); excuse != "" {
			fmt.Fprintf(out, "  %s\n", excuse)
		}
		fmt.Fprintf(out, "  %s\n", r.Plan.Verdict())
	}
}
