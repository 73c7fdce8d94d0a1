package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bgmbot/bangumi"
	"github.com/s0up4200/bgmbot/filter"
)

// filterCacheSize bounds the compiled filters kept by filters
const filterCacheSize = 32

var (
	searchLimit  int
	searchFilter string
	searchJSON   bool

	filters = filter.NewCompiler(filter.WithCache(filterCacheSize))
)

var searchCmd = &cobra.Command{
	Use:   "search <subject|character|person> <keyword>",
	Short: "Search subjects, characters or persons by keyword",
	Long: `Search the Bangumi catalog and print a numbered result list.

Results can be narrowed with an expression over the returned entries:

  bgmbot search subject "clannad" --filter 'score >= 8 and HasTag("Key")'

Available fields: id, name, name_cn, type, date, year, score, rank, votes,
tags, gender, career. Helpers: HasTag(name), HasCareer(name),
NameContains(text).`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "number of results (default bot.max_fuzzy_results)")
	searchCmd.Flags().StringVarP(&searchFilter, "filter", "f", "", "filter expression applied to the results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, err := bangumi.ParseKind(args[0])
	if err != nil {
		return err
	}
	if !kind.Searchable() {
		return fmt.Errorf("%s cannot be searched, use 'bgmbot user <username>'", kind)
	}
	keyword := strings.Join(args[1:], " ")

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Bot.MaxFuzzyResults
	}

	var f *filter.Filter
	if searchFilter != "" {
		if f, err = filters.Compile(searchFilter); err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug().Str("kind", string(kind)).Str("keyword", keyword).Int("limit", limit).Msg("Searching")

	page, err := client.Search(ctx, kind, keyword, limit)
	if err != nil {
		return fmt.Errorf("search failed: %s", describeError(err))
	}

	if f != nil {
		before := len(page.Data)
		page = f.Apply(page)
		logger.Debug().
			Str("filter", f.Expression()).
			Int("before", before).
			Int("after", len(page.Data)).
			Int("cached_filters", filters.CacheSize()).
			Msg("Filter applied")
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"total": page.Total,
			"data":  page.Data,
		})
	}

	fmt.Println(formatter.List(kind, page, limit))
	return nil
}
