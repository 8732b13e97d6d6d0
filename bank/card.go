package bank

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DimaFiz/BankBackEnd/internal/cardgen"
	"github.com/shopspring/decimal"
)

type CardStatus string

const (
	StatusActive  CardStatus = "Active"
	StatusBlocked CardStatus = "Blocked"
	StatusClosed  CardStatus = "Closed"
)

// CardKind selects the variant behavior of Pay and AccrueInterest.
type CardKind string

const (
	KindSimple   CardKind = "simple"
	KindCashback CardKind = "cashback"
	KindSaving   CardKind = "saving"
)

// Operation limits and rate ceilings. Breaching one blocks the card before
// the error is returned; the block persists even though the operation fails.
var (
	depositLimit  = decimal.NewFromInt(1_000_000)
	transferLimit = decimal.NewFromInt(500_000)
	payLimit      = decimal.NewFromInt(500_000)

	maxCashbackRate       = decimal.RequireFromString("0.10")
	maxSavingInterestRate = decimal.RequireFromString("0.3")

	defaultCashbackRate = decimal.RequireFromString("0.03")
	defaultInterestRate = decimal.RequireFromString("0.015")
)

var forbiddenMCC = map[string]struct{}{
	"7995": {}, // gambling
	"4829": {}, // wire transfers
	"6051": {}, // quasi-cash
}

const expireYears = 4

// EmptyPAN is the documented sentinel for a card without a generated number.
const EmptyPAN = "0000000000000000"

// DefaultCardInfoFields is the field order Info renders when none is given.
var DefaultCardInfoFields = []string{
	"card_id",
	"user_id",
	"phone",
	"bank_name",
	"bank_bic",
	"acc_id",
	"pan",
	"payment_system",
	"currency",
	"status",
	"issue_date",
	"expiry_date",
	"balance",
	"cashback_balance",
	"user_cards",
}

// Card is a payment instrument bound to one account and registered with the
// bank that issued it. Status moves one way only: Active to Blocked on a rule
// breach, Active or Blocked to Closed on an explicit close. Nothing leaves
// Closed.
type Card struct {
	ID            int64
	PAN           string
	PaymentSystem string
	Currency      string
	Status        CardStatus
	IssueDate     time.Time
	ExpiryDate    time.Time

	Kind         CardKind
	CashbackRate decimal.Decimal
	InterestRate decimal.Decimal

	account      *Account
	bank         *Bank
	transactions []*Transaction
}

// Account returns the backing account.
func (c *Card) Account() *Account { return c.account }

func (c *Card) lock() func() {
	if c.bank == nil {
		return func() {}
	}
	c.bank.mu.Lock()
	return c.bank.mu.Unlock
}

func (c *Card) linked() error {
	if c.account == nil {
		return errAccountNotLinked
	}
	return nil
}

func (c *Card) active() error {
	if c.Status == StatusClosed || c.Status == StatusBlocked {
		return errCardClosed
	}
	return nil
}

// Deposit credits the card's account. Amounts over the deposit limit block
// the card and fail.
func (c *Card) Deposit(amount decimal.Decimal) error {
	defer c.lock()()

	if amount.Sign() <= 0 {
		return errDepositNegative
	}
	if err := c.linked(); err != nil {
		return err
	}
	if err := c.active(); err != nil {
		return err
	}
	if amount.GreaterThan(depositLimit) {
		c.Status = StatusBlocked
		return errDepositLimitExceeded
	}

	ts := c.bank.stamps.NextAfter(c.IssueDate)
	c.account.Balance = c.account.Balance.Add(amount)
	t := &Transaction{
		ToCard:      c.ID,
		Amount:      amount,
		Type:        TransactionDeposit,
		Description: fmt.Sprintf("%s → card #%d", formatMoney(amount), c.ID),
		Timestamp:   ts,
	}
	c.bank.appendTransaction(t)
	c.transactions = append(c.transactions, t)
	return nil
}

// Transfer debits this card and credits the recipient in one step. The
// timestamp is taken after the later of the two issue dates so both histories
// stay consistent.
func (c *Card) Transfer(amount decimal.Decimal, to *Card) error {
	defer c.lock()()

	if amount.Sign() <= 0 {
		return errAmountNegative
	}
	if to == nil {
		return errRecipientNotFound
	}
	if err := c.linked(); err != nil {
		return err
	}
	if to.account == nil {
		return errRecipientAccountNotLinked
	}
	if err := c.active(); err != nil {
		return err
	}
	if to.Status == StatusClosed || to.Status == StatusBlocked {
		return errRecipientCardClosed
	}
	if c.ID == to.ID {
		return errTransferToSelf
	}
	if amount.GreaterThan(transferLimit) {
		c.Status = StatusBlocked
		return errTransferLimitExceeded
	}
	if c.account.Balance.LessThan(amount) {
		return errInsufficientForTransfer
	}

	latestIssue := c.IssueDate
	if to.IssueDate.After(latestIssue) {
		latestIssue = to.IssueDate
	}
	ts := c.bank.stamps.NextAfter(latestIssue)
	c.account.Balance = c.account.Balance.Sub(amount)
	to.account.Balance = to.account.Balance.Add(amount)
	t := &Transaction{
		FromCard:    c.ID,
		ToCard:      to.ID,
		Amount:      amount,
		Type:        TransactionTransfer,
		Description: fmt.Sprintf("%s: card #%d → card #%d", formatMoney(amount), c.ID, to.ID),
		Timestamp:   ts,
	}
	c.bank.appendTransaction(t)
	c.transactions = append(c.transactions, t)
	to.transactions = append(to.transactions, t)
	return nil
}

// Pay debits the account for a purchase in the given merchant category.
// Saving cards never pay; cashback cards additionally credit the cashback
// balance.
func (c *Card) Pay(amount decimal.Decimal, mcc string) error {
	defer c.lock()()

	switch c.Kind {
	case KindSaving:
		return errSavingPayment
	case KindCashback:
		return c.payWithCashback(amount, mcc)
	default:
		return c.pay(amount, mcc)
	}
}

func (c *Card) pay(amount decimal.Decimal, mcc string) error {
	if amount.Sign() <= 0 {
		return errPayNegative
	}
	if !validMCC(mcc) {
		return errInvalidMCC
	}
	if err := c.linked(); err != nil {
		return err
	}
	if err := c.active(); err != nil {
		return err
	}
	if _, forbidden := forbiddenMCC[mcc]; forbidden {
		return errMCCForbidden(mcc)
	}
	if amount.GreaterThan(payLimit) {
		c.Status = StatusBlocked
		return errPurchaseLimitExceeded
	}
	if c.account.Balance.LessThan(amount) {
		return errInsufficientForPayment
	}

	ts := c.bank.stamps.NextAfter(c.IssueDate)
	c.account.Balance = c.account.Balance.Sub(amount)
	t := &Transaction{
		FromCard:    c.ID,
		Amount:      amount,
		Type:        TransactionPay,
		MCC:         mcc,
		Description: fmt.Sprintf("%s (MCC: %s) from card #%d", formatMoney(amount), mcc, c.ID),
		Timestamp:   ts,
	}
	c.bank.appendTransaction(t)
	c.transactions = append(c.transactions, t)
	return nil
}

// payWithCashback keeps the original check order: the rate ceiling is
// enforced before the forbidden-category rule.
func (c *Card) payWithCashback(amount decimal.Decimal, mcc string) error {
	if amount.Sign() <= 0 {
		return errPayNegative
	}
	if !validMCC(mcc) {
		return errInvalidMCC
	}
	if c.CashbackRate.Sign() < 0 {
		return errCashbackNegative
	}
	if err := c.linked(); err != nil {
		return err
	}
	if err := c.active(); err != nil {
		return err
	}
	if c.CashbackRate.GreaterThanOrEqual(maxCashbackRate) {
		c.Status = StatusBlocked
		return errCashbackLimit
	}
	if _, forbidden := forbiddenMCC[mcc]; forbidden {
		return errMCCForbidden(mcc)
	}
	if amount.GreaterThan(payLimit) {
		c.Status = StatusBlocked
		return errPurchaseLimitExceeded
	}
	if c.account.Balance.LessThan(amount) {
		return errInsufficientForPayment
	}

	cashback := amount.Mul(c.CashbackRate).Round(2)
	ts := c.bank.stamps.NextAfter(c.IssueDate)
	c.account.Balance = c.account.Balance.Sub(amount)
	c.account.CashbackBalance = c.account.CashbackBalance.Add(cashback)
	t := &Transaction{
		FromCard: c.ID,
		Amount:   amount,
		Type:     TransactionPay,
		MCC:      mcc,
		Description: fmt.Sprintf("%s (MCC: %s) from card #%d (cashback %s)",
			formatMoney(amount), mcc, c.ID, formatMoney(cashback)),
		Timestamp: ts,
		Cashback:  cashback,
	}
	c.bank.appendTransaction(t)
	c.transactions = append(c.transactions, t)
	return nil
}

// AccrueInterest credits balance times the interest rate, rounded to two
// decimals. Only saving cards accrue interest.
func (c *Card) AccrueInterest() error {
	defer c.lock()()

	if c.Kind != KindSaving {
		return errInterestNotSupported
	}
	if c.InterestRate.Sign() < 0 {
		return errInterestNegative
	}
	if err := c.linked(); err != nil {
		return err
	}
	if err := c.active(); err != nil {
		return err
	}
	if c.InterestRate.GreaterThanOrEqual(maxSavingInterestRate) {
		c.Status = StatusBlocked
		return errSavingRateTooHigh
	}

	interest := c.account.Balance.Mul(c.InterestRate).Round(2)
	c.account.Balance = c.account.Balance.Add(interest)
	ts := c.bank.stamps.NextAfter(c.IssueDate)
	t := &Transaction{
		ToCard:      c.ID,
		Amount:      interest,
		Type:        TransactionInterest,
		Description: fmt.Sprintf("accrued interest %s on saving card #%d", formatMoney(interest), c.ID),
		Timestamp:   ts,
	}
	c.bank.appendTransaction(t)
	c.transactions = append(c.transactions, t)
	return nil
}

// Balance returns the account balance. Reads still require a linked, active
// card.
func (c *Card) Balance() (decimal.Decimal, error) {
	defer c.lock()()

	if err := c.linked(); err != nil {
		return decimal.Decimal{}, err
	}
	if err := c.active(); err != nil {
		return decimal.Decimal{}, err
	}
	return c.account.Balance, nil
}

// Info renders a card information sheet. With no fields the default order is
// used; unknown field names are skipped.
func (c *Card) Info(fields []string) (string, error) {
	defer c.lock()()

	if err := c.linked(); err != nil {
		return "", err
	}
	if err := c.active(); err != nil {
		return "", err
	}

	user := c.account.Owner
	pans := make([]string, len(user.Cards))
	for i, uc := range user.Cards {
		pans[i] = uc.PAN
	}
	data := map[string]string{
		"bank_name":        fmt.Sprintf("Bank:          %s", c.bank.Name),
		"bank_bic":         fmt.Sprintf("Bank BIC:      %s", c.bank.BIC),
		"card_id":          fmt.Sprintf("Card #%d", c.ID),
		"user_id":          fmt.Sprintf("User:          %d - %s %s", user.ID, user.LastName, user.FirstName),
		"phone":            fmt.Sprintf("Phone:         %s", user.Phone),
		"pan":              fmt.Sprintf("PAN:           %s", c.PAN),
		"acc_id":           fmt.Sprintf("Account:       %s", c.account.Number),
		"payment_system":   fmt.Sprintf("Pay system:    %s", c.PaymentSystem),
		"currency":         fmt.Sprintf("Currency:      %s", c.Currency),
		"status":           fmt.Sprintf("Status:        %s", c.Status),
		"issue_date":       fmt.Sprintf("Issued:        %s", c.IssueDate.Format("2006-01-02")),
		"expiry_date":      fmt.Sprintf("Expires:       %s", c.ExpiryDate.Format("2006-01-02")),
		"user_cards":       fmt.Sprintf("User cards:    %v", pans),
		"cashback_balance": fmt.Sprintf("Cashback:      %s", formatMoney(c.account.CashbackBalance)),
		"balance":          fmt.Sprintf("Balance:       %s", formatMoney(c.account.Balance)),
	}

	if fields == nil {
		fields = DefaultCardInfoFields
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if line, ok := data[f]; ok {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n") + "\n" + strings.Repeat("-", 50), nil
}

// TransactionHistory returns the header line followed by the card's
// transactions in timestamp order. The stored list is copied before sorting;
// reads never reorder state.
func (c *Card) TransactionHistory() ([]string, error) {
	defer c.lock()()

	if err := c.linked(); err != nil {
		return nil, err
	}
	if c.bank == nil {
		return nil, errBankNotLinked
	}
	if err := c.active(); err != nil {
		return nil, err
	}

	sorted := make([]*Transaction, len(c.transactions))
	copy(sorted, c.transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, HistoryHeader)
	for _, t := range sorted {
		lines = append(lines, t.LineFor(c.ID))
	}
	return lines, nil
}

// Close sets the terminal status unconditionally.
func (c *Card) Close() {
	defer c.lock()()
	c.Status = StatusClosed
}

func validMCC(mcc string) bool {
	return len(mcc) == 4 && cardgen.IsDigits(mcc)
}
