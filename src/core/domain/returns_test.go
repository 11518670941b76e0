package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeDraft() ReturnDraft {
	return ReturnDraft{
		ReceiptID:     "R001",
		CustomerName:  "Jane Doe",
		CustomerPhone: "555-0100",
		ProductName:   "Wireless Mouse",
		Quantity:      "2",
		Reason:        ReasonDefective,
		Description:   "Left click stopped working",
		RefundMethod:  RefundStoreCredit,
	}
}

func TestReturnDraftComplete(t *testing.T) {
	d := completeDraft()
	assert.True(t, d.Complete())
	assert.Empty(t, d.MissingFields())
}

func TestReturnDraftMissingFields(t *testing.T) {
	for _, field := range RequiredReturnFields {
		t.Run(string(field), func(t *testing.T) {
			d := completeDraft()
			require.NoError(t, d.Set(field, ""))
			assert.False(t, d.Complete())
			assert.Equal(t, []ReturnField{field}, d.MissingFields())
		})
	}
}

func TestReturnDraftImagesAreOptional(t *testing.T) {
	d := completeDraft()
	d.Images = nil
	assert.True(t, d.Complete())
}

func TestReturnDraftSetRejectsUnknownEnumValues(t *testing.T) {
	var d ReturnDraft

	err := d.Set(FieldReason, "Just because")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, d.Reason)

	err = d.Set(FieldRefundMethod, "crypto")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, d.RefundMethod)

	require.NoError(t, d.Set(FieldReason, string(ReasonOther)))
	require.NoError(t, d.Set(FieldRefundMethod, string(RefundCash)))
	assert.Equal(t, ReasonOther, d.Reason)
	assert.Equal(t, RefundCash, d.RefundMethod)
}

func TestReturnDraftSetUnknownField(t *testing.T) {
	var d ReturnDraft
	err := d.Set(ReturnField("serialNumber"), "X1")
	require.Error(t, err)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "serialNumber", de.Field)
}

func TestRefundMethodLabels(t *testing.T) {
	assert.Equal(t, "Original Payment Method", RefundOriginalPayment.Label())
	assert.Equal(t, "Store Credit", RefundStoreCredit.Label())
	assert.Equal(t, "Bank Transfer", RefundBankTransfer.Label())
	assert.Equal(t, "Cash", RefundCash.Label())
	assert.Len(t, ReturnReasons, 6)
}

func TestNotifications(t *testing.T) {
	created := ReturnRequestCreated("Jane Doe")
	assert.Equal(t, "Return Request Created", created.Title)
	assert.Contains(t, created.Description, "Jane Doe")
	assert.Equal(t, VariantDefault, created.Variant)

	missing := MissingInformation()
	assert.Equal(t, "Missing Information", missing.Title)
	assert.Equal(t, VariantDestructive, missing.Variant)
}
