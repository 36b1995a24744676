package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

var (
	matchReviewFile string
	matchByTarget   bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Link records across exports",
	Long: `Links prices to products, and invoices and delivery notes to orders.

Pairs: prices_products, invoices_orders, deliverynotes_orders.`,
}

var matchRunCmd = &cobra.Command{
	Use:   "run [pair]",
	Short: "Run the matcher",
	Long: `Runs every matching tier for a pair, or for all pairs if none is given.
Manual links are never touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

var matchShowCmd = &cobra.Command{
	Use:   "show <pair> <key>",
	Short: "Show the associations of a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchShow,
}

var matchLinkCmd = &cobra.Command{
	Use:   "link <pair> <source-key> <target-key>",
	Short: "Link two records manually",
	Long: `Records an operator association with confidence 1.0. The matcher
leaves a manually linked source record alone from then on.`,
	Args: cobra.ExactArgs(3),
	RunE: runMatchLink,
}

var matchUnlinkCmd = &cobra.Command{
	Use:   "unlink <pair> <source-key> <target-key>",
	Short: "Remove a manual link",
	Args:  cobra.ExactArgs(3),
	RunE:  runMatchUnlink,
}

func init() {
	matchRunCmd.Flags().StringVar(&matchReviewFile, "review", "", "write unmatched and low-confidence results to an .xlsx file")
	matchShowCmd.Flags().BoolVar(&matchByTarget, "target", false, "look the key up on the target side")
	matchCmd.AddCommand(matchRunCmd)
	matchCmd.AddCommand(matchShowCmd)
	matchCmd.AddCommand(matchLinkCmd)
	matchCmd.AddCommand(matchUnlinkCmd)
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matcher == nil {
		return notConfigured("match")
	}

	pairs := domain.AllPairTypes()
	if len(args) == 1 {
		p, err := parsePairArg(args[0])
		if err != nil {
			return err
		}
		pairs = []domain.PairType{p}
	}

	var results []*domain.MatchResult
	var errs []error
	for _, p := range pairs {
		res, err := matcher.Match(cmd.Context(), p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		results = append(results, res)
		cmd.Printf("%-21s %5d matched %5d created %5d updated %5d removed %4d preserved %4d unmatched %4d low confidence\n",
			p, len(res.Matched), res.Created, res.Updated, res.Removed, res.Preserved,
			len(res.Unmatched), len(res.LowConfidence()))
	}

	if matchReviewFile != "" {
		if err := writeReview(cmd, matchReviewFile, results); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	return nil
}

func writeReview(cmd *cobra.Command, path string, results []*domain.MatchResult) error {
	if reviewExporter == nil {
		return notConfigured("review export")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create review file: %w", err)
	}
	if err := reviewExporter.Export(cmd.Context(), f, results); err != nil {
		f.Close()
		return fmt.Errorf("write review file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write review file: %w", err)
	}

	cmd.Printf("Review written to %s\n", path)
	return nil
}

func runMatchShow(cmd *cobra.Command, args []string) error {
	if matcher == nil {
		return notConfigured("match")
	}
	pair, err := parsePairArg(args[0])
	if err != nil {
		return err
	}

	var assocs []domain.MatchAssociation
	if matchByTarget {
		assocs, err = matcher.AssociationsForTarget(cmd.Context(), pair, args[1])
	} else {
		assocs, err = matcher.Associations(cmd.Context(), pair, args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to get associations: %w", err)
	}

	if len(assocs) == 0 {
		cmd.Printf("No associations for %s.\n", args[1])
		return nil
	}

	for _, a := range assocs {
		flag := ""
		if a.LowConfidence {
			flag = " (review)"
		}
		cmd.Printf("%s -> %s  %.2f  %s/%s%s\n", a.SourceKey, a.TargetKey, a.Confidence, a.Strategy, a.CreatedBy, flag)
	}
	return nil
}

func runMatchLink(cmd *cobra.Command, args []string) error {
	if matcher == nil {
		return notConfigured("match")
	}
	pair, err := parsePairArg(args[0])
	if err != nil {
		return err
	}

	a, err := matcher.LinkManual(cmd.Context(), pair, args[1], args[2])
	if err != nil {
		return fmt.Errorf("failed to link: %w", err)
	}
	cmd.Printf("Linked %s -> %s (%s).\n", a.SourceKey, a.TargetKey, pair)
	return nil
}

func runMatchUnlink(cmd *cobra.Command, args []string) error {
	if matcher == nil {
		return notConfigured("match")
	}
	pair, err := parsePairArg(args[0])
	if err != nil {
		return err
	}

	if err := matcher.UnlinkManual(cmd.Context(), pair, args[1], args[2]); err != nil {
		return fmt.Errorf("failed to unlink: %w", err)
	}
	cmd.Printf("Unlinked %s -> %s (%s).\n", args[1], args[2], pair)
	return nil
}
