package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// LookupCommand searches the catalog from the terminal and prints JSON.
// Unlike the web endpoints it reports catalog failures as errors.
type LookupCommand struct {
	Query   string
	Field   string
	WorkKey string
	BaseURL string
	Timeout time.Duration

	Out io.Writer
}

func NewLookupCommand() *LookupCommand {
	return &LookupCommand{Out: os.Stdout}
}

func (cmd *LookupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)

	fs.StringVar(&cmd.Field, "field", string(metadata.FieldAny), "Field to search: title, author, isbn or q")
	fs.StringVar(&cmd.WorkKey, "work", "", "Print the summary of a work key (e.g. /works/OL893415W) instead of searching")
	fs.StringVar(&cmd.BaseURL, "base-url", config.DefaultOpenLibraryBaseURL, "Catalog base URL")
	fs.DurationVar(&cmd.Timeout, "timeout", metadata.DefaultTimeout, "Request timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s lookup [options] <query>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search the OpenLibrary catalog and print candidates as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s lookup the hobbit\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s lookup -field isbn 978-0-441-01359-3\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s lookup -work /works/OL893415W\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Query = strings.TrimSpace(strings.Join(fs.Args(), " "))
	if cmd.Query == "" && cmd.WorkKey == "" {
		fs.Usage()
		return fmt.Errorf("query or -work is required")
	}

	return nil
}

func (cmd *LookupCommand) Run() error {
	client := metadata.NewOpenLibraryClient(
		metadata.WithBaseURL(cmd.BaseURL),
		metadata.WithTimeout(cmd.Timeout),
	)
	ctx := context.Background()

	var result any
	if cmd.WorkKey != "" {
		text, err := client.WorkDescription(ctx, cmd.WorkKey)
		if err != nil {
			return fmt.Errorf("failed to fetch summary: %w", err)
		}
		result = map[string]string{"summary": metadata.Truncate(text, metadata.SummaryLimit)}
	} else {
		candidates, err := client.Search(ctx, cmd.Query, metadata.ParseSearchField(cmd.Field))
		if err != nil {
			return fmt.Errorf("failed to search catalog: %w", err)
		}
		result = candidates
	}

	enc := json.NewEncoder(cmd.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
