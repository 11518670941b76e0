package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returnsdesk/src/core/domain"
)

func TestQuantityDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{`{"quantity":"3"}`, "3"},
		{`{"quantity":3}`, "3"},
		{`{"quantity":""}`, ""},
		{`{"quantity":null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var req SubmitReturnRequest
		require.NoError(t, json.Unmarshal([]byte(tt.in), &req), tt.in)
		assert.Equal(t, tt.want, req.Quantity, tt.in)
	}

	var req SubmitReturnRequest
	assert.Error(t, json.Unmarshal([]byte(`{"quantity":[1]}`), &req))
}

func TestToDraft(t *testing.T) {
	req := SubmitReturnRequest{
		ReceiptID:    "R001",
		CustomerName: "Jane Doe",
		Quantity:     "2",
		Reason:       "Other",
		RefundMethod: "cash",
		Images:       []string{"a.png"},
	}

	d := req.ToDraft()
	assert.Equal(t, "R001", d.ReceiptID)
	assert.Equal(t, "2", d.Quantity)
	assert.Equal(t, domain.ReasonOther, d.Reason)
	assert.Equal(t, domain.RefundCash, d.RefundMethod)
	assert.Equal(t, []string{"a.png"}, d.Images)
}
