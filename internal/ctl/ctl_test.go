package ctl

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"

	"meloon/internal/auth"
	"meloon/internal/config"
	"meloon/internal/core"
	"meloon/internal/services"
	"meloon/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SQLiteDBPath: filepath.Join(t.TempDir(), "ctl.db"),
		JWTSecret:    "0123456789abcdef",
		JWTIssuer:    "meloon",
		JWTTTL:       time.Hour,
		PageSize:     20,
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	var out bytes.Buffer
	fs := flag.NewFlagSet("meloonctl", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "meloonctl")
	cdr.Error = &bytes.Buffer{}
	for _, c := range Commands(cfg, &out) {
		cdr.Register(c, "")
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cdr.Execute(context.Background()), out.String()
}

// seedLedger gives owner a Wallet with 1000.00 income and 250.50 food
// expense in May 2024.
func seedLedger(t *testing.T, cfg *config.Config, owner int64, withTransactions bool) {
	t.Helper()
	ctx := context.Background()
	if status, out := run(t, cfg, "seed", "-owner", strconv.FormatInt(owner, 10)); status != subcommands.ExitSuccess {
		t.Fatalf("seed: %v %s", status, out)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	account, err := services.NewAccountService(repo).Add(ctx, owner, core.AccountCreate{Name: "Wallet", Type: "cash"})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	if !withTransactions {
		return
	}

	cats := services.NewCategoryService(repo, nil)
	find := func(typ core.TxType, name string) int64 {
		list, err := cats.List(ctx, owner, typ)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range list {
			if c.Name == name {
				return c.ID
			}
		}
		t.Fatalf("category %s not seeded", name)
		return 0
	}

	tx := services.NewTransactionService(repo, nil, nil, services.TransactionOptions{})
	may := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	for _, cmd := range []core.TransactionCreate{
		{AccountID: account.ID, CategoryID: find(core.Income, "Salary"), Type: core.Income, Amount: core.Cents(100000), Time: may},
		{AccountID: account.ID, CategoryID: find(core.Expense, "Food"), Type: core.Expense, Amount: core.Cents(25050), Time: may.Add(time.Hour), Summary: "groceries"},
	} {
		if _, err := tx.Add(ctx, owner, cmd); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}
}

func TestMigrate(t *testing.T) {
	cfg := testConfig(t)
	status, out := run(t, cfg, "migrate")
	if status != subcommands.ExitSuccess || !strings.Contains(out, "schema at version 2") {
		t.Fatalf("migrate = %v %q", status, out)
	}
}

func TestSeed(t *testing.T) {
	cfg := testConfig(t)

	status, out := run(t, cfg, "seed", "-owner", "3")
	if status != subcommands.ExitSuccess || !strings.Contains(out, "created 10 categories for owner 3") {
		t.Fatalf("first seed = %v %q", status, out)
	}
	status, out = run(t, cfg, "seed", "-owner", "3")
	if status != subcommands.ExitSuccess || !strings.Contains(out, "created 0 categories") {
		t.Fatalf("second seed = %v %q", status, out)
	}
	if status, _ := run(t, cfg, "seed"); status != subcommands.ExitUsageError {
		t.Fatalf("seed without owner = %v, want usage error", status)
	}
}

func TestToken(t *testing.T) {
	cfg := testConfig(t)

	status, out := run(t, cfg, "token", "-owner", "7", "-ttl", "10m")
	if status != subcommands.ExitSuccess {
		t.Fatalf("token = %v", status)
	}
	claims, err := auth.ParseToken(cfg.JWTSecret, cfg.JWTIssuer, strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if left := time.Until(claims.ExpiresAt.Time); left > 10*time.Minute || left < 9*time.Minute {
		t.Errorf("token expires in %v, want about 10m", left)
	}

	cfg.JWTSecret = "short"
	if status, _ := run(t, cfg, "token", "-owner", "7"); status != subcommands.ExitFailure {
		t.Fatalf("token with short secret = %v, want failure", status)
	}
}

func TestReport(t *testing.T) {
	cfg := testConfig(t)
	seedLedger(t, cfg, 1, true)

	status, out := run(t, cfg, "report", "-owner", "1", "-date", "2024-05")
	if status != subcommands.ExitSuccess {
		t.Fatalf("report = %v %q", status, out)
	}
	for _, want := range []string{"MONTH report 2024-05", "1000.00", "250.50", "Food", "100.0%", "score"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	status, out = run(t, cfg, "report", "-owner", "1", "-period", "year", "-date", "2024")
	if status != subcommands.ExitSuccess || !strings.Contains(out, "YEAR report 2024") || !strings.Contains(out, "2024-12") {
		t.Fatalf("year report = %v %q", status, out)
	}
	if strings.Contains(out, "score") {
		t.Errorf("year report should not carry advice:\n%s", out)
	}

	if status, _ := run(t, cfg, "report", "-owner", "1", "-period", "WEEK"); status != subcommands.ExitFailure {
		t.Fatalf("unknown period = %v, want failure", status)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	seedLedger(t, cfg, 1, true)
	seedLedger(t, cfg, 2, false)

	file := filepath.Join(t.TempDir(), "ledger.xlsx")
	status, out := run(t, cfg, "export", "-owner", "1", "-o", file)
	if status != subcommands.ExitSuccess || !strings.Contains(out, file) {
		t.Fatalf("export = %v %q", status, out)
	}

	status, out = run(t, cfg, "import", "-owner", "2", file)
	if status != subcommands.ExitSuccess || !strings.Contains(out, "imported 2 rows, skipped 0") {
		t.Fatalf("import = %v %q", status, out)
	}

	status, out = run(t, cfg, "reconcile", "-owner", "2")
	if status != subcommands.ExitSuccess || !strings.Contains(out, "match") {
		t.Fatalf("reconcile = %v %q", status, out)
	}

	if status, _ := run(t, cfg, "import", "-owner", "2"); status != subcommands.ExitUsageError {
		t.Fatalf("import without file = %v, want usage error", status)
	}
}

func TestReconcileReportsDrift(t *testing.T) {
	cfg := testConfig(t)
	seedLedger(t, cfg, 1, true)

	db, err := sql.Open("sqlite", storage.DSN(cfg.SQLiteDBPath))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE accounts SET balance_cents = 1 WHERE owner_id = 1`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	status, out := run(t, cfg, "reconcile", "-owner", "1")
	if status != subcommands.ExitFailure {
		t.Fatalf("reconcile = %v, want failure", status)
	}
	if !strings.Contains(out, `"Wallet": stored 0.01, replayed 749.50`) {
		t.Fatalf("reconcile output = %q", out)
	}
}
