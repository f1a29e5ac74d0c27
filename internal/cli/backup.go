package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookshelf/internal/backup"
	"github.com/mrlokans/bookshelf/internal/config"
)

// BackupCommand takes a one-off snapshot of the library file.
type BackupCommand struct {
	LibraryPath string
	BackupDir   string
	Keep        int

	Out io.Writer
}

func NewBackupCommand() *BackupCommand {
	return &BackupCommand{Out: os.Stdout}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	fs.StringVar(&cmd.LibraryPath, "library", config.DefaultLibraryPath, "Path to the library JSON file")
	fs.StringVar(&cmd.BackupDir, "dir", "./backups", "Directory for snapshots")
	fs.IntVar(&cmd.Keep, "keep", 7, "Number of snapshots to keep (0 keeps all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Copy the library file into a timestamped snapshot.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *BackupCommand) Run() error {
	snapshotter := backup.NewSnapshotter(cmd.LibraryPath, cmd.BackupDir, cmd.Keep)
	path, err := snapshotter.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to back up %s: %w", cmd.LibraryPath, err)
	}

	fmt.Fprintf(cmd.Out, "Snapshot written to %s\n", path)
	return nil
}
