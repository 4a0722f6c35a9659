package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akhmetov/librarian/internal/config"
	"github.com/akhmetov/librarian/internal/database"
	"github.com/akhmetov/librarian/internal/entrypoint"
)

// AcquireCommand downloads a single catalog book from the command line.
type AcquireCommand struct {
	ExternalID string
	Title      string
	Author     string
	Timeout    time.Duration
}

func NewAcquireCommand() *AcquireCommand {
	return &AcquireCommand{}
}

func (cmd *AcquireCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("acquire", flag.ExitOnError)

	fs.StringVar(&cmd.ExternalID, "id", "", "Catalog book identifier (required)")
	fs.StringVar(&cmd.Title, "title", "", "Fallback title if the document omits one")
	fs.StringVar(&cmd.Author, "author", "", "Fallback author if the document omits one")
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Overall timeout for the acquisition")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s acquire [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download a book from the catalog and add it to the library.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s acquire -id 123456\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s acquire -id 123456 -title \"Война и мир\" -author \"Толстой Л.Н.\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ExternalID == "" {
		fs.Usage()
		return fmt.Errorf("catalog id is required")
	}

	return nil
}

func (cmd *AcquireCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	service, err := entrypoint.BuildService(cfg, db)
	if err != nil {
		return fmt.Errorf("build acquisition pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	book, err := service.Acquire(ctx, cmd.ExternalID, cmd.Title, cmd.Author)
	if err != nil {
		return err
	}

	fmt.Printf("Acquired %q by %s (id %s)\n", book.Title, book.Author, book.ID)
	return nil
}
