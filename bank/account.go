package bank

import "github.com/shopspring/decimal"

// Account is owned by exactly one user and backs exactly one card. The number
// is checksum-valid against the issuing bank's BIC and never changes. The
// balance never goes negative: operations that would overdraw are rejected
// before any mutation. The cashback balance only grows, credited by
// cashback-bearing purchases.
type Account struct {
	Owner           *User
	Number          string
	Balance         decimal.Decimal
	CashbackBalance decimal.Decimal
}
