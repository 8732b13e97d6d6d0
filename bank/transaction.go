package bank

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionTransfer TransactionType = "transfer"
	TransactionPay      TransactionType = "pay"
	TransactionInterest TransactionType = "interest"
)

// HistoryHeader is the first line of every rendered transaction history.
const HistoryHeader = "timestamp,type,from_card,to_card,amount,mcc,cashback,description"

const timestampLayout = "2006-01-02 15:04:05"

// Transaction is an append-only ledger entry. Card ids of 0 mean the side is
// not set: a deposit has no source, a purchase no destination. A transaction
// is never mutated after a card operation creates it.
type Transaction struct {
	FromCard    int64
	ToCard      int64
	Amount      decimal.Decimal
	Type        TransactionType
	MCC         string
	Description string
	Timestamp   time.Time
	Cashback    decimal.Decimal
}

// Line renders the canonical bank-wide ledger form.
func (t *Transaction) Line() string {
	return t.render("")
}

// LineFor renders the card-relative form: the amount carries "+" when the
// card is the destination and "-" otherwise.
func (t *Transaction) LineFor(cardID int64) string {
	sign := "-"
	if t.ToCard == cardID {
		sign = "+"
	}
	return t.render(sign)
}

func (t *Transaction) render(sign string) string {
	var b strings.Builder
	b.WriteString(t.Timestamp.Format(timestampLayout))
	b.WriteByte(',')
	b.WriteString(string(t.Type))
	b.WriteByte(',')
	b.WriteString(optionalCardID(t.FromCard))
	b.WriteByte(',')
	b.WriteString(optionalCardID(t.ToCard))
	b.WriteByte(',')
	b.WriteString(sign)
	b.WriteString(formatMoney(t.Amount))
	b.WriteByte(',')
	b.WriteString(t.MCC)
	b.WriteByte(',')
	b.WriteString(formatMoney(t.Cashback))
	b.WriteByte(',')
	b.WriteString(t.Description)
	return b.String()
}

func optionalCardID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + currencySymbol
}
