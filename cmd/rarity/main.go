package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"gorarity/adapters/metadata"
	"gorarity/adapters/rarity/formulas"
	"gorarity/app"
	"gorarity/domain/core"
	"gorarity/internal"
	"gorarity/internal/config"
	"gorarity/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// configPath is the --config flag shared by every command
var configPath string

// scoreFlags are the command line overrides of the scoring configuration
type scoreFlags struct {
	formula    string
	normalized bool
	rankBy     string
	tolerance  float64
	workers    int
	dataPath   string
	timeout    time.Duration
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:           "rarity",
		Short:         "Score and rank the tokens of a collection by trait rarity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (default $RARITY_CONFIG)")

	rootCmd.AddCommand(
		newRankCmd(),
		newScoreCmd(),
		newStatsCmd(),
		newFormulasCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		stop()
		os.Exit(1)
	}
}

func newRankCmd() *cobra.Command {
	var flags scoreFlags
	var top int

	cmd := &cobra.Command{
		Use:   "rank [metadata.json]",
		Short: "Rank every token of a collection",
		Long: `Score every token with the selected formula and print the ranking as JSON.

The input file defaults to RARITY_INPUT. Flags override the RARITY_* environment.

Example: rarity rank tokens.json --formula geometric --rank-by score,unique_traits --top 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := loadOptions(cmd, flags)
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			collection, err := loadCollection(ctx, cfg, args, flags.dataPath)
			if err != nil {
				return err
			}

			svc := app.NewScoringService(internal.NewLogger(cfg.Log.Level))
			result, err := svc.ScoreCollection(ctx, collection, opts)
			if err != nil {
				return errors.Wrap(err, "scoring failed")
			}

			if top > 0 && top < len(result.Ranked) {
				result.Ranked = result.Ranked[:top]
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	addScoreFlags(cmd, &flags)
	cmd.Flags().IntVar(&top, "top", 0, "Only print the first N ranked tokens (0 prints all)")

	return cmd
}

func newScoreCmd() *cobra.Command {
	var flags scoreFlags

	cmd := &cobra.Command{
		Use:   "score [metadata.json] [token-id]",
		Short: "Score one token against its collection",
		Long: `Score a single token and print its score as JSON.

Example: rarity score tokens.json 42 --formula harmonic`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := loadOptions(cmd, flags)
			if err != nil {
				return err
			}

			tokenID, err := core.ParseTokenID(args[len(args)-1])
			if err != nil {
				return errors.WrapInvalidInput(err, "invalid token id")
			}

			ctx, cancel := withTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			collection, err := loadCollection(ctx, cfg, args[:len(args)-1], flags.dataPath)
			if err != nil {
				return err
			}

			svc := app.NewScoringService(internal.NewLogger(cfg.Log.Level))
			score, err := svc.ScoreToken(ctx, collection, tokenID, opts)
			if err != nil {
				return errors.Wrapf(err, "scoring token %s failed", tokenID)
			}
			return writeJSON(cmd.OutOrStdout(), score)
		},
	}

	addScoreFlags(cmd, &flags)

	return cmd
}

func newStatsCmd() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "stats [metadata.json]",
		Short: "Print the attribute statistics table of a collection",
		Long: `Normalize and schema-enforce a collection, then print every attribute value
with its token count, supply, probability and information content.

Number and date attributes are included; they are binned or grouped by epoch second.

Example: rarity stats tokens.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			collection, err := loadCollection(cmd.Context(), cfg, args, dataPath)
			if err != nil {
				return err
			}

			prepared, err := collection.Prepare()
			if err != nil {
				return errors.Wrap(err, "failed to prepare collection")
			}

			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"collection_id":   collection.ID(),
				"fingerprint":     prepared.Fingerprint,
				"tokens":          len(prepared.Tokens),
				"total_supply":    prepared.Table.TotalSupply(),
				"entropy":         prepared.Entropy(),
				"statistics":      prepared.Statistics(),
				"null_attributes": prepared.NullAttributes(),
			})
		},
	}

	cmd.Flags().StringVar(&dataPath, "data-path", "", "gjson path of the token array inside the document")

	return cmd
}

func newFormulasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formulas",
		Short: "List the available scoring formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range formulas.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", f.Name(), f.Description())
			}
			return nil
		},
	}
}

func addScoreFlags(cmd *cobra.Command, flags *scoreFlags) {
	cmd.Flags().StringVar(&flags.formula, "formula", "", "Scoring formula (overrides RARITY_FORMULA)")
	cmd.Flags().BoolVar(&flags.normalized, "normalized", true, "Weight traits by 1/cardinality (overrides RARITY_NORMALIZED)")
	cmd.Flags().StringVar(&flags.rankBy, "rank-by", "", "Comma separated rank metrics: score, unique_traits, information")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "Relative tie tolerance (overrides RARITY_TIE_TOLERANCE)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel scoring workers (overrides RARITY_WORKERS)")
	cmd.Flags().StringVar(&flags.dataPath, "data-path", "", "gjson path of the token array inside the document")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Abort scoring after this long (0 disables)")
}

// loadOptions loads the environment configuration and applies the flags that were set
func loadOptions(cmd *cobra.Command, flags scoreFlags) (*config.Config, app.ScoreOptions, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, app.ScoreOptions{}, err
	}

	fs := cmd.Flags()
	if fs.Changed("formula") {
		name, err := formulas.ParseName(flags.formula)
		if err != nil {
			return nil, app.ScoreOptions{}, errors.WrapInvalidInput(err, "invalid formula")
		}
		cfg.Scoring.Formula = name
	}
	if fs.Changed("normalized") {
		cfg.Scoring.Normalized = flags.normalized
	}
	if fs.Changed("rank-by") {
		metrics, err := config.ParseRankBy(flags.rankBy)
		if err != nil {
			return nil, app.ScoreOptions{}, err
		}
		cfg.Scoring.RankBy = metrics
	}
	if fs.Changed("tolerance") {
		if flags.tolerance < 0 {
			return nil, app.ScoreOptions{}, errors.InvalidInput("tolerance must not be negative")
		}
		cfg.Scoring.TieTolerance = flags.tolerance
	}
	if fs.Changed("workers") {
		if flags.workers < 1 {
			return nil, app.ScoreOptions{}, errors.InvalidInput("workers must be at least 1")
		}
		cfg.Scoring.Workers = flags.workers
	}

	return cfg, app.ScoreOptionsFromConfig(cfg.Scoring), nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// loadCollection reads the input file named by args, or RARITY_INPUT when args is empty
func loadCollection(ctx context.Context, cfg *config.Config, args []string, dataPath string) (*app.Collection, error) {
	path := cfg.Input.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, errors.InvalidInput("no metadata file given and RARITY_INPUT is not set")
	}

	var opts []metadata.Option
	if dataPath != "" {
		opts = append(opts, metadata.WithDataPath(dataPath))
	}

	tokens, err := metadata.NewJSONReader(path, opts...).Tokens(ctx)
	if err != nil {
		return nil, errors.WrapInvalidInput(err, "failed to read metadata")
	}

	internal.NewLogger(cfg.Log.Level).WithComponent("cli").Info("loaded %d tokens from %s", len(tokens), path)

	return app.NewCollection(tokens), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
