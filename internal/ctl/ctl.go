// Package ctl implements the meloonctl operator commands.
package ctl

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"meloon/internal/config"
	"meloon/internal/storage"
)

// Commands returns every operator command. Flags default to cfg and
// results are written to out.
func Commands(cfg *config.Config, out io.Writer) []subcommands.Command {
	base := env{cfg: cfg, out: out}
	return []subcommands.Command{
		&migrateCmd{env: base},
		&seedCmd{env: base},
		&tokenCmd{env: base},
		&exportCmd{env: base},
		&importCmd{env: base},
		&reportCmd{env: base},
		&reconcileCmd{env: base},
		&sheetsAuthCmd{env: base},
	}
}

// env is what every command shares.
type env struct {
	cfg    *config.Config
	out    io.Writer
	dbPath string
	owner  int64
}

func (e *env) dbFlag(f *flag.FlagSet) {
	f.StringVar(&e.dbPath, "db", e.cfg.SQLiteDBPath, "SQLite database path")
}

func (e *env) ownerFlag(f *flag.FlagSet) {
	f.Int64Var(&e.owner, "owner", 0, "owner (user) id (required)")
}

func (e *env) requireOwner() bool {
	if e.owner <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -owner must be a positive user id")
		return false
	}
	return true
}

func (e *env) open() (*storage.SQLiteRepository, bool) {
	repo, err := storage.NewSQLiteRepository(e.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %s: %v\n", e.dbPath, err)
		return nil, false
	}
	return repo, true
}

func failure(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
