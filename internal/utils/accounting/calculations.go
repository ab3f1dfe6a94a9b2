package accounting

import (
	"fmt"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoundingEpsilon is the tolerance for base-amount and balance comparisons.
// Base amounts are rounded to 2 places, so half a cent covers rounding drift.
var RoundingEpsilon = decimal.New(5, -3) // 0.005

// BaseAmount converts a transaction-currency amount to base currency at the
// given rate, rounded to 2 decimal places.
func BaseAmount(amountTxn, rate decimal.Decimal) decimal.Decimal {
	return amountTxn.Mul(rate).Round(2)
}

// WithinEpsilon reports whether two amounts agree within RoundingEpsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(RoundingEpsilon)
}

// ValidateEntryBalance checks that the lines of a journal entry balance:
// the sum of debit amounts must equal the sum of credit amounts within
// RoundingEpsilon, every amount must be positive, and at least two lines
// must be present.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", line.AccountID)
		}
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !WithinEpsilon(debits, credits) {
		return fmt.Errorf("journal entry does not balance: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}
