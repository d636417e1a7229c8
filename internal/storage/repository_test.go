package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"meloon/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	v, dirty, err := SchemaVersion(DSN(path))
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 || dirty {
		t.Fatalf("version = %d dirty = %v, want 2 clean", v, dirty)
	}
}

func TestAdjustBalanceReturnsNewBalance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	q := repo.Queries()

	acc, err := q.CreateAccount(ctx, 1, "Wallet", "cash")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	bal, err := q.AdjustBalance(ctx, 1, acc.ID, 1500)
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	bal, err = q.AdjustBalance(ctx, 1, acc.ID, -2000)
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	if bal.Cents != -500 {
		t.Fatalf("balance = %d, want -500", bal.Cents)
	}

	if _, err := q.AdjustBalance(ctx, 2, acc.ID, 10); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign owner adjust err = %v, want not found", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	acc, err := repo.Queries().CreateAccount(ctx, 1, "Bank", "card")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	boom := errors.New("boom")
	err = repo.WithTx(ctx, func(q *Queries) error {
		if _, err := q.AdjustBalance(ctx, 1, acc.ID, 999); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}

	got, err := repo.Queries().GetAccount(ctx, 1, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance.Cents != 0 {
		t.Fatalf("balance after rollback = %d, want 0", got.Balance.Cents)
	}
}

func TestTransactionListingAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	q := repo.Queries()

	acc, _ := q.CreateAccount(ctx, 1, "Wallet", "cash")
	food, _ := q.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Food", Type: core.Expense})
	salary, _ := q.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Salary", Type: core.Income})

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		cat, typ := food.ID, core.Expense
		if i%5 == 0 {
			cat, typ = salary.ID, core.Income
		}
		_, err := q.InsertTransaction(ctx, core.Transaction{
			OwnerID: 1, AccountID: acc.ID, CategoryID: cat, Type: typ,
			Amount: core.Cents(int64(100 + i)), Time: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("InsertTransaction %d: %v", i, err)
		}
	}
	// Another owner's row must never show up.
	other, _ := q.CreateAccount(ctx, 2, "Other", "cash")
	otherCat, _ := q.CreateCategory(ctx, core.Category{OwnerID: 2, Name: "Food", Type: core.Expense})
	if _, err := q.InsertTransaction(ctx, core.Transaction{
		OwnerID: 2, AccountID: other.ID, CategoryID: otherCat.ID, Type: core.Expense,
		Amount: core.Cents(1), Time: base,
	}); err != nil {
		t.Fatalf("InsertTransaction other: %v", err)
	}

	page, err := q.ListTransactions(ctx, 1, core.TransactionFilter{Page: 2}, 20)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if page.Total != 25 || len(page.Items) != 5 || page.Page != 2 {
		t.Fatalf("page = total %d items %d page %d, want 25/5/2", page.Total, len(page.Items), page.Page)
	}
	first, _ := q.ListTransactions(ctx, 1, core.TransactionFilter{Page: 1}, 20)
	if !first.Items[0].Time.After(first.Items[1].Time) {
		t.Fatalf("listing is not newest first")
	}
	if first.Items[0].CategoryName == "" || first.Items[0].AccountName != "Wallet" {
		t.Fatalf("view names not joined: %+v", first.Items[0])
	}

	incomes, err := q.ListTransactions(ctx, 1, core.TransactionFilter{Type: core.Income}, 20)
	if err != nil {
		t.Fatalf("ListTransactions income: %v", err)
	}
	if incomes.Total != 5 {
		t.Fatalf("income total = %d, want 5", incomes.Total)
	}

	window := core.Window{Start: base, End: base.Add(3 * time.Hour)}
	entries, err := q.WindowEntries(ctx, 1, window)
	if err != nil {
		t.Fatalf("WindowEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("window entries = %d, want 3 (end is exclusive)", len(entries))
	}
}

func TestDeleteReferencedAccountConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	q := repo.Queries()

	acc, _ := q.CreateAccount(ctx, 1, "Wallet", "cash")
	cat, _ := q.CreateCategory(ctx, core.Category{OwnerID: 1, Name: "Food", Type: core.Expense})
	if _, err := q.InsertTransaction(ctx, core.Transaction{
		OwnerID: 1, AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense,
		Amount: core.Cents(100), Time: time.Now(),
	}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	if err := q.DeleteAccount(ctx, 1, acc.ID); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("DeleteAccount err = %v, want conflict", err)
	}
	if err := q.DeleteCategory(ctx, 1, cat.ID); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("DeleteCategory err = %v, want conflict", err)
	}
	if err := q.DeleteAccount(ctx, 1, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("DeleteAccount missing err = %v, want not found", err)
	}
}

func TestDebtTotals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	q := repo.Queries()

	for _, d := range []core.Debt{
		{OwnerID: 1, Type: core.Borrow, Person: "Ann", Amount: core.Cents(10000)},
		{OwnerID: 1, Type: core.Lend, Person: "Bob", Amount: core.Cents(30000)},
		{OwnerID: 1, Type: core.Lend, Person: "Cid", Amount: core.Cents(5000)},
	} {
		d.Time = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		if _, err := q.CreateDebt(ctx, d); err != nil {
			t.Fatalf("CreateDebt: %v", err)
		}
	}

	borrow, lend, err := q.DebtTotals(ctx, 1)
	if err != nil {
		t.Fatalf("DebtTotals: %v", err)
	}
	if borrow.Cents != 10000 || lend.Cents != 35000 {
		t.Fatalf("totals = %d/%d, want 10000/35000", borrow.Cents, lend.Cents)
	}

	lends, err := q.ListDebts(ctx, 1, core.DebtFilter{Type: core.Lend}, 20)
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if lends.Total != 2 {
		t.Fatalf("lend count = %d, want 2", lends.Total)
	}
}

func TestReminderFiring(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	q := repo.Queries()

	r, err := q.CreateReminder(ctx, core.Reminder{
		OwnerID: 1, EventName: "Rent", At: core.TimeOfDay{Hour: 9}, Frequency: core.Once, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	fired := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := q.MarkReminderFired(ctx, r.ID, fired, true); err != nil {
		t.Fatalf("MarkReminderFired: %v", err)
	}

	got, err := q.GetReminder(ctx, 1, r.ID)
	if err != nil {
		t.Fatalf("GetReminder: %v", err)
	}
	if got.Active || !got.LastFiredAt.Equal(fired) {
		t.Fatalf("reminder = %+v, want inactive fired at %v", got, fired)
	}

	active, err := q.ListActiveReminders(ctx)
	if err != nil {
		t.Fatalf("ListActiveReminders: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active reminders = %d, want 0", len(active))
	}
}

func TestSeedCategoriesIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	n, err := repo.SeedCategories(ctx, 7, core.DefaultCategories())
	if err != nil {
		t.Fatalf("SeedCategories: %v", err)
	}
	if n != len(core.DefaultCategories()) {
		t.Fatalf("seeded %d, want %d", n, len(core.DefaultCategories()))
	}
	n, err = repo.SeedCategories(ctx, 7, core.DefaultCategories())
	if err != nil {
		t.Fatalf("SeedCategories again: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed created %d, want 0", n)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	q := newTestRepo(t).Queries()

	u, err := q.CreateUser(ctx, core.User{Email: "ann@example.com", PasswordHash: "hash", Nickname: "Ann", Language: "en"})
	if err != nil || u.ID <= 0 {
		t.Fatalf("CreateUser() = %+v, %v", u, err)
	}
	if _, err := q.CreateUser(ctx, core.User{Email: "ANN@example.com", PasswordHash: "other"}); core.KindOf(err) != core.KindConflict {
		t.Fatalf("duplicate email error = %v, want conflict", err)
	}

	got, err := q.FindUserByEmail(ctx, "Ann@Example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if got != u {
		t.Fatalf("FindUserByEmail() = %+v, want %+v", got, u)
	}
	if _, err := q.FindUserByEmail(ctx, "bob@example.com"); core.KindOf(err) != core.KindNotFound {
		t.Fatalf("missing user error = %v, want not found", err)
	}
}
