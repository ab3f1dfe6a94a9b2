package domain_test

import (
	"testing"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDocumentStatus_LegalTransitions(t *testing.T) {
	cases := []struct {
		from  domain.DocumentStatus
		event domain.DocumentEvent
		want  domain.DocumentStatus
	}{
		{domain.DocStatusDraft, domain.EventPost, domain.DocStatusPosted},
		{domain.DocStatusDraft, domain.EventCancel, domain.DocStatusCancelled},
		{domain.DocStatusPosted, domain.EventPartiallySettle, domain.DocStatusPartiallySettled},
		{domain.DocStatusPosted, domain.EventSettle, domain.DocStatusSettled},
		{domain.DocStatusPosted, domain.EventReverse, domain.DocStatusReversed},
		{domain.DocStatusPartiallySettled, domain.EventPartiallySettle, domain.DocStatusPartiallySettled},
		{domain.DocStatusPartiallySettled, domain.EventSettle, domain.DocStatusSettled},
		{domain.DocStatusPartiallySettled, domain.EventReverse, domain.DocStatusReversed},
		{domain.DocStatusSettled, domain.EventReverse, domain.DocStatusReversed},
	}
	for _, tc := range cases {
		got, err := domain.NextDocumentStatus(tc.from, tc.event)
		require.NoError(t, err, "%s + %s", tc.from, tc.event)
		assert.Equal(t, tc.want, got, "%s + %s", tc.from, tc.event)
	}
}

func TestNextDocumentStatus_TerminalStatuses(t *testing.T) {
	events := []domain.DocumentEvent{
		domain.EventPost, domain.EventCancel, domain.EventPartiallySettle,
		domain.EventSettle, domain.EventReverse,
	}
	for _, from := range []domain.DocumentStatus{domain.DocStatusCancelled, domain.DocStatusReversed} {
		for _, event := range events {
			_, err := domain.NextDocumentStatus(from, event)
			require.Error(t, err, "%s + %s", from, event)
			assert.Contains(t, err.Error(), "terminal")
		}
	}
}

func TestNextDocumentStatus_IllegalEvents(t *testing.T) {
	cases := []struct {
		from  domain.DocumentStatus
		event domain.DocumentEvent
	}{
		{domain.DocStatusDraft, domain.EventSettle},
		{domain.DocStatusDraft, domain.EventPartiallySettle},
		{domain.DocStatusDraft, domain.EventReverse},
		{domain.DocStatusPosted, domain.EventPost},
		{domain.DocStatusPosted, domain.EventCancel},
		{domain.DocStatusPartiallySettled, domain.EventCancel},
		{domain.DocStatusSettled, domain.EventSettle},
		{domain.DocStatusSettled, domain.EventCancel},
	}
	for _, tc := range cases {
		_, err := domain.NextDocumentStatus(tc.from, tc.event)
		require.Error(t, err, "%s + %s", tc.from, tc.event)
		assert.Contains(t, err.Error(), "not allowed")
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INVOICE-000042", domain.FormatDocumentNumber("INVOICE", 42))
	assert.Equal(t, "DRAFT-000001", domain.FormatDocumentNumber(domain.SequenceNamespaceDraft, 1))
	assert.Equal(t, "PAYMENT-1000000", domain.FormatDocumentNumber("PAYMENT", 1000000))
}

func TestIsDraft(t *testing.T) {
	doc := domain.Document{Status: domain.DocStatusDraft}
	assert.True(t, doc.IsDraft())
	doc.Status = domain.DocStatusPosted
	assert.False(t, doc.IsDraft())
}

func TestMirrorSide(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Mirror())
	assert.Equal(t, domain.Debit, domain.Credit.Mirror())
}
