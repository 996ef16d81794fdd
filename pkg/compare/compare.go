// Package compare computes the keyed difference between two record sets.
//
// Records are matched by tx_id. Order within a set is not significant, and
// when a set holds the same tx_id more than once the last occurrence wins.
package compare

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/Rhymond/go-money"

	"github.com/ssargent/ypbank/pkg/record"
)

// Mismatch is a tx_id present in both sets with unequal records
type Mismatch struct {
	TxID   uint64             `json:"tx_id"`
	First  record.Transaction `json:"first"`
	Second record.Transaction `json:"second"`
	Fields []record.FieldDiff `json:"fields"`
}

// Report is the outcome of comparing two record sets. Every slice is sorted
// by tx_id.
type Report struct {
	Mismatches   []Mismatch           `json:"mismatches"`
	OnlyInFirst  []record.Transaction `json:"only_in_first"`
	OnlyInSecond []record.Transaction `json:"only_in_second"`
	Matched      int                  `json:"matched"`
}

// Identical reports whether no differences were found.
func (r *Report) Identical() bool {
	return len(r.Mismatches) == 0 && len(r.OnlyInFirst) == 0 && len(r.OnlyInSecond) == 0
}

// Compare indexes both sets by tx_id and reports every difference.
func Compare(first, second record.Set) *Report {
	a, b := index(first), index(second)

	report := &Report{
		Mismatches:   []Mismatch{},
		OnlyInFirst:  []record.Transaction{},
		OnlyInSecond: []record.Transaction{},
	}

	for _, id := range sortedKeys(a) {
		left := a[id]
		right, ok := b[id]
		if !ok {
			report.OnlyInFirst = append(report.OnlyInFirst, left)
			continue
		}
		if fields := record.Diff(left, right); len(fields) > 0 {
			report.Mismatches = append(report.Mismatches, Mismatch{TxID: id, First: left, Second: right, Fields: fields})
			continue
		}
		report.Matched++
	}

	for _, id := range sortedKeys(b) {
		if _, ok := a[id]; !ok {
			report.OnlyInSecond = append(report.OnlyInSecond, b[id])
		}
	}

	return report
}

func index(set record.Set) map[uint64]record.Transaction {
	m := make(map[uint64]record.Transaction, len(set))
	for _, tx := range set {
		m[tx.TxID] = tx
	}
	return m
}

func sortedKeys(m map[uint64]record.Transaction) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RenderOptions controls the console report
type RenderOptions struct {
	// Currency is an ISO 4217 code. When set, AMOUNT differences are also
	// shown as money in that currency, reading amounts as minor units.
	Currency string
}

// Render writes the human-readable report. label1 and label2 name the two
// sources, typically their file paths.
func (r *Report) Render(w io.Writer, label1, label2 string, opts RenderOptions) error {
	if r.Identical() {
		_, err := fmt.Fprintln(w, "The transaction records are identical.")
		return err
	}

	p := &printer{w: w}
	for _, m := range r.Mismatches {
		p.printf("Transaction %d differs:\n", m.TxID)
		p.printf("  In %s: %s\n", label1, m.First)
		p.printf("  In %s: %s\n", label2, m.Second)
		for _, f := range m.Fields {
			left, right := f.Left, f.Right
			if f.Field == record.FieldAmount && opts.Currency != "" {
				left = formatAmount(m.First.Amount, opts.Currency)
				right = formatAmount(m.Second.Amount, opts.Currency)
			}
			p.printf("    %s: %s -> %s\n", f.Field, left, right)
		}
	}
	for _, tx := range r.OnlyInFirst {
		p.printf("Transaction %d present in %s but missing in %s\n", tx.TxID, label1, label2)
	}
	for _, tx := range r.OnlyInSecond {
		p.printf("Transaction %d present in %s but missing in %s\n", tx.TxID, label2, label1)
	}
	return p.err
}

// formatAmount renders minor units as money. Amounts beyond int64 and unknown
// currencies fall back to the raw number.
func formatAmount(amount uint64, currency string) string {
	if amount > math.MaxInt64 || money.GetCurrency(currency) == nil {
		return fmt.Sprintf("%d", amount)
	}
	return money.New(int64(amount), currency).Display()
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
