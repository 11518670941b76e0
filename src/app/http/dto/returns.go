package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"returnsdesk/src/core/domain"
)

// SubmitReturnRequest is the payload for POST /v1/returns/submit.
// Presence of required fields is checked by the return form, not by binding,
// so an incomplete draft still produces the form's notification.
type SubmitReturnRequest struct {
	ReceiptID     string   `json:"receiptId"`
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	ProductName   string   `json:"productName"`
	Quantity      Quantity `json:"quantity"`
	Reason        string   `json:"reason" binding:"omitempty,oneof='Defective product' 'Customer changed mind' 'Wrong item received' 'Item not as described' 'Damaged during shipping' 'Other'"`
	Description   string   `json:"description"`
	RefundMethod  string   `json:"refundMethod" binding:"omitempty,oneof=original_payment store_credit bank_transfer cash"`
	Images        []string `json:"images" binding:"omitempty,max=10,dive,max=255"`
}

// ToDraft converts the payload into a return draft.
func (r *SubmitReturnRequest) ToDraft() domain.ReturnDraft {
	return domain.ReturnDraft{
		ReceiptID:     r.ReceiptID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		ProductName:   r.ProductName,
		Quantity:      string(r.Quantity),
		Reason:        domain.ReturnReason(r.Reason),
		Description:   r.Description,
		RefundMethod:  domain.RefundMethod(r.RefundMethod),
		Images:        r.Images,
	}
}

// Quantity is the raw quantity input. Browsers post it as a string, API
// clients often as a number; both decode to the same text.
type Quantity string

// UnmarshalJSON accepts a JSON string, number or null.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*q = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("quantity must be a string or number: %w", err)
		}
		*q = Quantity(n.String())
		return nil
	}
}

// SessionUserResponse is the body of GET /v1/session.
type SessionUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// FromDomain builds the response from the authenticated user.
func (SessionUserResponse) FromDomain(u *domain.SessionUser) SessionUserResponse {
	return SessionUserResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}
