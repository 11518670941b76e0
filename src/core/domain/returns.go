package domain

// ReturnReason is the customer's stated reason for a return.
type ReturnReason string

const (
	ReasonDefective        ReturnReason = "Defective product"
	ReasonChangedMind      ReturnReason = "Customer changed mind"
	ReasonWrongItem        ReturnReason = "Wrong item received"
	ReasonNotAsDescribed   ReturnReason = "Item not as described"
	ReasonDamagedInTransit ReturnReason = "Damaged during shipping"
	ReasonOther            ReturnReason = "Other"
)

// ReturnReasons lists the reasons in the order the form offers them.
var ReturnReasons = []ReturnReason{
	ReasonDefective,
	ReasonChangedMind,
	ReasonWrongItem,
	ReasonNotAsDescribed,
	ReasonDamagedInTransit,
	ReasonOther,
}

// Valid reports whether r is one of the fixed reasons.
func (r ReturnReason) Valid() bool {
	for _, known := range ReturnReasons {
		if r == known {
			return true
		}
	}
	return false
}

// RefundMethod is how the customer prefers to be refunded.
type RefundMethod string

const (
	RefundOriginalPayment RefundMethod = "original_payment"
	RefundStoreCredit     RefundMethod = "store_credit"
	RefundBankTransfer    RefundMethod = "bank_transfer"
	RefundCash            RefundMethod = "cash"
)

// RefundMethods lists the refund methods in the order the form offers them.
var RefundMethods = []RefundMethod{
	RefundOriginalPayment,
	RefundStoreCredit,
	RefundBankTransfer,
	RefundCash,
}

var refundMethodLabels = map[RefundMethod]string{
	RefundOriginalPayment: "Original Payment Method",
	RefundStoreCredit:     "Store Credit",
	RefundBankTransfer:    "Bank Transfer",
	RefundCash:            "Cash",
}

// Valid reports whether m is one of the fixed refund methods.
func (m RefundMethod) Valid() bool {
	_, ok := refundMethodLabels[m]
	return ok
}

// Label returns the display label for m, or the raw value if unknown.
func (m RefundMethod) Label() string {
	if label, ok := refundMethodLabels[m]; ok {
		return label
	}
	return string(m)
}

// ReturnField names one input of the return request form.
type ReturnField string

const (
	FieldReceiptID     ReturnField = "receiptId"
	FieldCustomerName  ReturnField = "customerName"
	FieldCustomerPhone ReturnField = "customerPhone"
	FieldProductName   ReturnField = "productName"
	FieldQuantity      ReturnField = "quantity"
	FieldReason        ReturnField = "reason"
	FieldDescription   ReturnField = "description"
	FieldRefundMethod  ReturnField = "refundMethod"
)

// RequiredReturnFields are the fields that must be non-empty before a draft
// can be submitted. Images are the only optional input.
var RequiredReturnFields = []ReturnField{
	FieldReceiptID,
	FieldCustomerName,
	FieldCustomerPhone,
	FieldProductName,
	FieldQuantity,
	FieldReason,
	FieldDescription,
	FieldRefundMethod,
}

// ReturnDraft is the unsaved state of a return request.
// Quantity is kept as the raw input text; only its presence is checked.
type ReturnDraft struct {
	ReceiptID     string
	CustomerName  string
	CustomerPhone string
	ProductName   string
	Quantity      string
	Reason        ReturnReason
	Description   string
	RefundMethod  RefundMethod
	Images        []string
}

// Value returns the current text of field f.
func (d *ReturnDraft) Value(f ReturnField) string {
	switch f {
	case FieldReceiptID:
		return d.ReceiptID
	case FieldCustomerName:
		return d.CustomerName
	case FieldCustomerPhone:
		return d.CustomerPhone
	case FieldProductName:
		return d.ProductName
	case FieldQuantity:
		return d.Quantity
	case FieldReason:
		return string(d.Reason)
	case FieldDescription:
		return d.Description
	case FieldRefundMethod:
		return string(d.RefundMethod)
	}
	return ""
}

// Set assigns value to field f. Enumerated fields accept the empty string
// (no selection) or one of their fixed values.
func (d *ReturnDraft) Set(f ReturnField, value string) error {
	switch f {
	case FieldReceiptID:
		d.ReceiptID = value
	case FieldCustomerName:
		d.CustomerName = value
	case FieldCustomerPhone:
		d.CustomerPhone = value
	case FieldProductName:
		d.ProductName = value
	case FieldQuantity:
		d.Quantity = value
	case FieldReason:
		r := ReturnReason(value)
		if value != "" && !r.Valid() {
			return NewValidationError(string(f), "unknown return reason")
		}
		d.Reason = r
	case FieldDescription:
		d.Description = value
	case FieldRefundMethod:
		m := RefundMethod(value)
		if value != "" && !m.Valid() {
			return NewValidationError(string(f), "unknown refund method")
		}
		d.RefundMethod = m
	default:
		return NewValidationError(string(f), "unknown field")
	}
	return nil
}

// MissingFields returns the required fields that are still empty, in form order.
func (d *ReturnDraft) MissingFields() []ReturnField {
	var missing []ReturnField
	for _, f := range RequiredReturnFields {
		if d.Value(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field is present.
func (d *ReturnDraft) Complete() bool {
	return len(d.MissingFields()) == 0
}
