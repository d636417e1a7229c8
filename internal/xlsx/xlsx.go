// Package xlsx moves an owner's ledger in and out of spreadsheet workbooks.
// Workbooks hold a "transactions" sheet and a "debts" sheet; the first row
// of each is a header.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"meloon/internal/core"
	"meloon/internal/log"
)

const (
	SheetTransactions = "transactions"
	SheetDebts        = "debts"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	transactionHeader = []any{"transaction_id", "type", "amount", "category", "account", "time", "summary", "person"}
	debtHeader        = []any{"debt_id", "type", "person", "amount", "time", "note"}
)

// Store is the read side export and name resolution need; *storage.Queries
// implements it.
type Store interface {
	AllTransactions(ctx context.Context, owner int64) ([]core.TransactionView, error)
	ListDebts(ctx context.Context, owner int64, f core.DebtFilter, pageSize int) (core.Page[core.Debt], error)
	FindCategoryByName(ctx context.Context, owner int64, name string, typ core.TxType) (core.Category, error)
	FindAccountByName(ctx context.Context, owner int64, name string) (core.Account, error)
}

// TransactionAdder and DebtAdder are the ledger entry points rows go
// through, so imported rows move balances like any other add.
type (
	TransactionAdder interface {
		Add(ctx context.Context, owner int64, cmd core.TransactionCreate) (core.Transaction, error)
	}
	DebtAdder interface {
		Add(ctx context.Context, owner int64, cmd core.DebtCreate) (core.Debt, error)
	}
)

type Service struct {
	store        Store
	transactions TransactionAdder
	debts        DebtAdder
}

func NewService(store Store, transactions TransactionAdder, debts DebtAdder) *Service {
	return &Service{store: store, transactions: transactions, debts: debts}
}

// Export writes the owner's transactions and debts, oldest first.
func (s *Service) Export(ctx context.Context, owner int64, w io.Writer) error {
	txs, err := s.store.AllTransactions(ctx, owner)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	debts, err := s.store.ListDebts(ctx, owner, core.DebtFilter{}, 0)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetTransactions); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := f.NewSheet(SheetDebts); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := writeRow(f, SheetTransactions, 1, transactionHeader); err != nil {
		return err
	}
	for i, t := range txs {
		row := []any{
			t.ID, string(t.Type), t.Amount.Decimal().InexactFloat64(), t.CategoryName, t.AccountName,
			t.Time.UTC().Format(core.TimeLayout), t.Summary, t.Counterparty,
		}
		if err := writeRow(f, SheetTransactions, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetDebts, 1, debtHeader); err != nil {
		return err
	}
	// ListDebts is newest first.
	for i := range debts.Items {
		d := debts.Items[len(debts.Items)-1-i]
		row := []any{
			d.ID, string(d.Type), d.Person, d.Amount.Decimal().InexactFloat64(),
			d.Time.UTC().Format(core.TimeLayout), d.Note,
		}
		if err := writeRow(f, SheetDebts, i+2, row); err != nil {
			return err
		}
	}

	f.SetColWidth(SheetTransactions, "F", "F", 20)
	f.SetColWidth(SheetTransactions, "G", "G", 30)
	f.SetColWidth(SheetDebts, "E", "E", 20)
	f.SetColWidth(SheetDebts, "F", "F", 30)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	slog.InfoContext(ctx, "Ledger exported",
		log.FieldComponent, log.ComponentSpreadsheet,
		log.FieldOwnerID, owner,
		"transactions", len(txs),
		"debts", len(debts.Items))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// SkippedRow explains why one spreadsheet row was not imported. Row is the
// 1-based sheet row number.
type SkippedRow struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	SkippedRows []SkippedRow `json:"skipped_rows"`
}

func (r *ImportResult) skip(sheet string, row int, reason string) {
	r.Skipped++
	r.SkippedRows = append(r.SkippedRows, SkippedRow{Sheet: sheet, Row: row, Reason: reason})
}

// Import adds every row of a workbook through the ledger. Rows with unknown
// names or invalid values are skipped and reported; any other failure stops
// the import, leaving earlier rows committed.
func (s *Service) Import(ctx context.Context, owner int64, r io.Reader) (ImportResult, error) {
	res := ImportResult{SkippedRows: []SkippedRow{}}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, core.Validation("import", "not a readable xlsx workbook: %v", err)
	}
	defer f.Close()

	if err := s.importTransactions(ctx, f, owner, &res); err != nil {
		return res, err
	}
	if err := s.importDebts(ctx, f, owner, &res); err != nil {
		return res, err
	}

	slog.InfoContext(ctx, "Ledger imported",
		log.FieldComponent, log.ComponentSpreadsheet,
		log.FieldOwnerID, owner,
		"imported", res.Imported,
		"skipped", res.Skipped)
	return res, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// skippable reports whether err only concerns the row itself.
func skippable(err error) bool {
	k := core.KindOf(err)
	return k == core.KindNotFound || k == core.KindValidation
}

func (s *Service) importTransactions(ctx context.Context, f *excelize.File, owner int64, res *ImportResult) error {
	rows, err := sheetRows(f, SheetTransactions)
	if err != nil {
		return err
	}
	for i, row := range rows {
		n := i + 1
		if i == 0 || blank(row) {
			continue
		}

		cmd, err := s.transactionRow(ctx, owner, row)
		if err == nil {
			_, err = s.transactions.Add(ctx, owner, cmd)
		}
		if err != nil {
			if !skippable(err) {
				return fmt.Errorf("import %s row %d: %w", SheetTransactions, n, err)
			}
			res.skip(SheetTransactions, n, err.Error())
			continue
		}
		res.Imported++
	}
	return nil
}

func (s *Service) transactionRow(ctx context.Context, owner int64, row []string) (core.TransactionCreate, error) {
	typ, err := core.ParseTxType(cell(row, 1))
	if err != nil {
		return core.TransactionCreate{}, err
	}
	amount, err := core.ParseMoney(cell(row, 2))
	if err != nil {
		return core.TransactionCreate{}, err
	}
	at, err := core.ParseTime(cell(row, 5))
	if err != nil {
		return core.TransactionCreate{}, err
	}
	cat, err := s.store.FindCategoryByName(ctx, owner, cell(row, 3), typ)
	if err != nil {
		return core.TransactionCreate{}, err
	}
	acc, err := s.store.FindAccountByName(ctx, owner, cell(row, 4))
	if err != nil {
		return core.TransactionCreate{}, err
	}
	return core.TransactionCreate{
		AccountID:    acc.ID,
		CategoryID:   cat.ID,
		Amount:       amount,
		Type:         typ,
		Time:         at,
		Summary:      cell(row, 6),
		Counterparty: cell(row, 7),
	}, nil
}

func (s *Service) importDebts(ctx context.Context, f *excelize.File, owner int64, res *ImportResult) error {
	rows, err := sheetRows(f, SheetDebts)
	if err != nil {
		return err
	}
	for i, row := range rows {
		n := i + 1
		if i == 0 || blank(row) {
			continue
		}

		cmd, err := debtRow(row)
		if err == nil {
			_, err = s.debts.Add(ctx, owner, cmd)
		}
		if err != nil {
			if !skippable(err) {
				return fmt.Errorf("import %s row %d: %w", SheetDebts, n, err)
			}
			res.skip(SheetDebts, n, err.Error())
			continue
		}
		res.Imported++
	}
	return nil
}

func debtRow(row []string) (core.DebtCreate, error) {
	typ, err := core.ParseDebtType(cell(row, 1))
	if err != nil {
		return core.DebtCreate{}, err
	}
	amount, err := core.ParseMoney(cell(row, 3))
	if err != nil {
		return core.DebtCreate{}, err
	}
	at, err := core.ParseTime(cell(row, 4))
	if err != nil {
		return core.DebtCreate{}, err
	}
	return core.DebtCreate{
		Type:   typ,
		Person: cell(row, 2),
		Amount: amount,
		Time:   at,
		Note:   cell(row, 5),
	}, nil
}

// Filename is the attachment name for an export made at now.
func Filename(now time.Time) string {
	return "meloonmoney_" + now.UTC().Format("20060102_150405") + ".xlsx"
}
