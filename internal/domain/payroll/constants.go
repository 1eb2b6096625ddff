package payroll

import "github.com/shopspring/decimal"

// Settlement rates. Superannuation is computed for remittance reporting
// only and is never deducted from the net payment.
var (
	CommissionRate = decimal.RequireFromString("0.01")
	TaxRate        = decimal.RequireFromString("0.15")
	SuperRate      = decimal.RequireFromString("0.11")
)

const (
	InstructionsPending        = "pending"
	InstructionsGenerated      = "instructions_generated"
	InstructionsAwaitingImport = "awaiting_bank_import"
	InstructionsCompleted      = "completed"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusOverdue    = "overdue"
)

// Detail record descriptions, in leg emission order.
const (
	DescCommission = "OZZIEWORK COMM"
	DescNetPayment = "NET PAYMENT"
	DescTax        = "WH TAX"
)

const PaymentMethodBankTransfer = "bank_transfer"
