package models

// Ledger defaults
const (
	DefaultCurrency = "CHF"
	FlagCleared     = "*"
	FlagPending     = "!"
)

// Default asset and liability accounts per statement source
const (
	AccountBCV        = "Assets:Banks:BCV"
	AccountRevolut    = "Assets:Banks:Revolut"
	AccountCreditCard = "Liabilities:CreditCard"
)

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionLedgerFile = 0644
)
