package accounting_test

import (
	"testing"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBaseAmount(t *testing.T) {
	assert.True(t, accounting.BaseAmount(d("100"), d("32.5")).Equal(d("3250")))
	assert.True(t, accounting.BaseAmount(d("100"), d("1")).Equal(d("100")))
	// rounds half away from zero at 2 places
	assert.True(t, accounting.BaseAmount(d("0.335"), d("1")).Equal(d("0.34")))
	assert.True(t, accounting.BaseAmount(d("33.333"), d("0.3")).Equal(d("10")))
}

func TestWithinEpsilon(t *testing.T) {
	assert.True(t, accounting.WithinEpsilon(d("10.00"), d("10.00")))
	assert.True(t, accounting.WithinEpsilon(d("10.00"), d("10.005")))
	assert.True(t, accounting.WithinEpsilon(d("10.005"), d("10.00")))
	assert.False(t, accounting.WithinEpsilon(d("10.00"), d("10.01")))
}

func balancedLines(amount string) []domain.JournalLine {
	return []domain.JournalLine{
		{AccountID: "acct-a", Amount: d(amount), Side: domain.Debit},
		{AccountID: "acct-b", Amount: d(amount), Side: domain.Credit},
	}
}

func TestValidateEntryBalance_Balanced(t *testing.T) {
	require.NoError(t, accounting.ValidateEntryBalance(balancedLines("1200.50")))
}

func TestValidateEntryBalance_ToleratesRoundingDrift(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "acct-a", Amount: d("100.00"), Side: domain.Debit},
		{AccountID: "acct-b", Amount: d("60.00"), Side: domain.Credit},
		{AccountID: "acct-c", Amount: d("40.005"), Side: domain.Credit},
	}
	require.NoError(t, accounting.ValidateEntryBalance(lines))
}

func TestValidateEntryBalance_Unbalanced(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "acct-a", Amount: d("100.00"), Side: domain.Debit},
		{AccountID: "acct-b", Amount: d("99.98"), Side: domain.Credit},
	}
	err := accounting.ValidateEntryBalance(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not balance")
}

func TestValidateEntryBalance_RejectsNonPositiveAmount(t *testing.T) {
	lines := balancedLines("50")
	lines[0].Amount = d("-50")
	err := accounting.ValidateEntryBalance(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")

	lines[0].Amount = decimal.Zero
	require.Error(t, accounting.ValidateEntryBalance(lines))
}

func TestValidateEntryBalance_RejectsSingleLine(t *testing.T) {
	err := accounting.ValidateEntryBalance(balancedLines("50")[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two lines")
}
