package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/bgmbot/bangumi"
)

var (
	downloadImage bool
	imageDir      string
	rawJSON       bool
)

var subjectCmd = &cobra.Command{
	Use:   "subject <id|keyword>...",
	Short: "Look up subjects by id or keyword",
	Long: `Resolve one or more subjects and print their details.

A query made only of digits is an id; anything else is searched and the
best match is shown. Several queries are resolved concurrently and
printed in the order given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: lookupRunner(bangumi.KindSubject),
}

var characterCmd = &cobra.Command{
	Use:   "character <id|keyword>...",
	Short: "Look up characters by id or keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE:  lookupRunner(bangumi.KindCharacter),
}

var personCmd = &cobra.Command{
	Use:   "person <id|keyword>...",
	Short: "Look up persons by id or keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE:  lookupRunner(bangumi.KindPerson),
}

var userCmd = &cobra.Command{
	Use:   "user <username>...",
	Short: "Look up Bangumi users",
	Args:  cobra.MinimumNArgs(1),
	RunE:  lookupRunner(bangumi.KindUser),
}

func init() {
	for _, c := range []*cobra.Command{subjectCmd, characterCmd, personCmd, userCmd} {
		c.Flags().BoolVar(&downloadImage, "image", false, "download and convert the cover or avatar")
		c.Flags().StringVar(&imageDir, "image-dir", "", "directory for converted images (default image.temp_dir)")
		c.Flags().BoolVar(&rawJSON, "json", false, "print the raw API payload")
		rootCmd.AddCommand(c)
	}
}

type lookupResult struct {
	query  string
	entity bangumi.Entity
	err    error
}

func lookupRunner(kind bangumi.Kind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		results := resolveAll(ctx, kind, args)

		var failed int
		for i, res := range results {
			if i > 0 {
				fmt.Println()
				fmt.Println(strings.Repeat("-", 60))
				fmt.Println()
			}
			if res.err != nil {
				failed++
				fmt.Printf("✗ %s: %s\n", res.query, describeError(res.err))
				continue
			}
			printEntity(ctx, kind, res.entity)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d lookups failed", failed, len(results))
		}
		return nil
	}
}

// resolveAll resolves queries concurrently. The shared limiter still
// spaces the requests; concurrency only overlaps waiting with I/O.
func resolveAll(ctx context.Context, kind bangumi.Kind, queries []string) []lookupResult {
	results := make([]lookupResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, q := range queries {
		results[i].query = q
		g.Go(func() error {
			// Failures are per query and must not cancel the others
			results[i].entity, results[i].err = client.Resolve(gctx, kind, q)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func printEntity(ctx context.Context, kind bangumi.Kind, e bangumi.Entity) {
	if rawJSON {
		fmt.Println(e.Raw())
		return
	}

	text, imageURL := formatter.Entity(kind, e)
	fmt.Println(text)

	if !downloadImage || imageURL == "" {
		return
	}

	dir := imageDir
	if dir == "" {
		dir = cfg.Image.TempDir
	}
	path, err := converter.FetchAndConvert(ctx, imageURL, dir, cfg.ImageFormat())
	if err != nil {
		logger.Warn().Err(err).Str("url", imageURL).Msg("Image processing failed")
		return
	}
	fmt.Printf("\nImage: %s\n", path)
}

// describeError renders lookup failures for the terminal
func describeError(err error) string {
	var apiErr *bangumi.APIError
	switch {
	case errors.Is(err, bangumi.ErrNotFound):
		return "not found"
	case errors.Is(err, bangumi.ErrRateLimited):
		return "rate limited, try again later"
	case errors.As(err, &apiErr) && apiErr.IsUnauthorized():
		return "access token rejected, check api.access_token"
	default:
		return err.Error()
	}
}
