// Package bank models a retail bank's card, account and transaction
// subsystem: issuing payment instruments, executing monetary operations and
// keeping an append-only ledger per card and bank-wide. All state lives
// in-process; every counter and cursor belongs to one Bank instance and is
// serialized under its mutex.
package bank

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DimaFiz/BankBackEnd/internal/cardgen"
	"github.com/DimaFiz/BankBackEnd/internal/sequence"
	"github.com/shopspring/decimal"
)

const (
	cardCurrency   = "RUB"
	currencySymbol = "₽"

	defaultPaymentSystem = "MIR"

	accountTypeCode     = "40817" // personal accounts
	accountBranchCode   = "0000"  // the bank has no branches
	accountCurrencyCode = "810"   // ruble operations

	maxCardsPerUser = 5
)

var binBySystem = map[string]string{
	"MIR":        "220400",
	"VISA":       "400000",
	"MASTERCARD": "510000",
}

var (
	issueDateEpoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	timestampEpoch = time.Date(2022, time.January, 1, 9, 0, 0, 0, time.UTC)
)

var namePattern = regexp.MustCompile(`^[А-ЯЁа-яё]+$`)

// CardRequest is a card application. CashbackRate and InterestRate override
// the variant defaults when set.
type CardRequest struct {
	LastName      string
	FirstName     string
	PIN           string
	Phone         string
	PaymentSystem string
	Kind          CardKind
	CashbackRate  *decimal.Decimal
	InterestRate  *decimal.Decimal
}

// Bank is the aggregate root: the customer registry, card issuance workflow
// and the bank-wide transaction ledger. One mutex serializes every sequence
// counter, cursor and balance mutation kept by the bank.
type Bank struct {
	Name string
	BIC  string

	mu         sync.Mutex
	userSeq    int64
	accountSeq int64
	cardSeq    int64
	panSeq     int64

	customers map[int64]*User
	accounts  map[int64][]*Account
	cards     map[int64][]*Card
	cardByID  map[int64]*Card
	ledger    []*Transaction

	issueDates *sequence.IssueDates
	stamps     *sequence.Timestamps

	archive Archiver
}

func New(name, bic string) *Bank {
	return &Bank{
		Name:       name,
		BIC:        bic,
		customers:  make(map[int64]*User),
		accounts:   make(map[int64][]*Account),
		cards:      make(map[int64][]*Card),
		cardByID:   make(map[int64]*Card),
		issueDates: sequence.NewIssueDates(issueDateEpoch),
		stamps:     sequence.NewTimestamps(timestampEpoch),
	}
}

// SetArchive attaches a write-through ledger archive. Every committed
// transaction is forwarded to it.
func (b *Bank) SetArchive(a Archiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.archive = a
}

// ApplyForCard runs the issuance workflow: validate the application, find or
// create the customer, allocate an account and a PAN, and register the card.
// Identity is the phone number; an application with a registered phone but a
// different name is a conflict.
func (b *Bank) ApplyForCard(req CardRequest) (*Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !cardgen.IsDigits(req.PIN) {
		return nil, errPINFormatInvalid
	}
	if len(req.PIN) != 4 {
		return nil, errPINInvalid
	}
	if !namePattern.MatchString(req.LastName) || !namePattern.MatchString(req.FirstName) {
		return nil, errNameInvalid
	}
	if _, ok := binBySystem[strings.ToUpper(req.PaymentSystem)]; !ok {
		return nil, errPaymentSystemNotSupported(req.PaymentSystem)
	}

	for _, u := range b.customers {
		if u.Phone == req.Phone && (u.FirstName != req.FirstName || u.LastName != req.LastName) {
			return nil, errUserConflict
		}
	}

	var user *User
	for _, u := range b.customers {
		if u.Phone == req.Phone && u.LastName == req.LastName && u.FirstName == req.FirstName {
			user = u
			break
		}
	}
	if user != nil && len(user.Cards) >= maxCardsPerUser {
		return nil, errTooManyCards
	}
	if user == nil {
		b.userSeq++
		user = &User{
			ID:        b.userSeq,
			LastName:  req.LastName,
			FirstName: req.FirstName,
			Phone:     req.Phone,
			pin:       req.PIN,
			bank:      b,
		}
		b.customers[user.ID] = user
		b.accounts[user.ID] = []*Account{}
		b.cards[user.ID] = []*Card{}
	}

	b.accountSeq++
	number, err := cardgen.AccountNumber(accountTypeCode, accountCurrencyCode, accountBranchCode, b.BIC, b.accountSeq)
	if err != nil {
		return nil, fmt.Errorf("allocating account number: %w", err)
	}
	account := &Account{Owner: user, Number: number}

	b.panSeq++
	pan, err := cardgen.PANFromSerial(b.binFor(req.PaymentSystem), b.panSeq)
	if err != nil {
		return nil, fmt.Errorf("generating pan: %w", err)
	}

	b.cardSeq++
	issue := b.issueDates.Next()
	card := &Card{
		ID:            b.cardSeq,
		PAN:           pan,
		PaymentSystem: req.PaymentSystem,
		Currency:      cardCurrency,
		Status:        StatusActive,
		IssueDate:     issue,
		ExpiryDate:    expiryAfter(issue),
		Kind:          req.Kind,
		account:       account,
		bank:          b,
	}
	switch req.Kind {
	case KindCashback:
		card.CashbackRate = defaultCashbackRate
		if req.CashbackRate != nil {
			card.CashbackRate = *req.CashbackRate
		}
	case KindSaving:
		card.InterestRate = defaultInterestRate
		if req.InterestRate != nil {
			card.InterestRate = *req.InterestRate
		}
	}

	user.Cards = append(user.Cards, card)
	user.Accounts = append(user.Accounts, account)
	b.accounts[user.ID] = append(b.accounts[user.ID], account)
	b.cards[user.ID] = append(b.cards[user.ID], card)
	b.cardByID[card.ID] = card

	return card, nil
}

// IssueSimpleDebitCard issues a plain debit card.
func (b *Bank) IssueSimpleDebitCard(req CardRequest) (*Card, error) {
	req.Kind = KindSimple
	return b.ApplyForCard(req)
}

// IssueCashbackDebitCard issues a debit card crediting cashback on purchases.
func (b *Bank) IssueCashbackDebitCard(req CardRequest) (*Card, error) {
	req.Kind = KindCashback
	return b.ApplyForCard(req)
}

// IssueSavingCard issues a saving card: no purchases, interest accrual.
func (b *Bank) IssueSavingCard(req CardRequest) (*Card, error) {
	req.Kind = KindSaving
	return b.ApplyForCard(req)
}

// Card returns a registered card by id.
func (b *Bank) Card(id int64) (*Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cardByID[id]
	return c, ok
}

// Customer returns a registered user by id.
func (b *Bank) Customer(id int64) (*User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.customers[id]
	return u, ok
}

// GlobalHistory returns the header line followed by every transaction in the
// bank-wide ledger in timestamp order. The stored ledger is not reordered.
func (b *Bank) GlobalHistory() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	sorted := make([]*Transaction, len(b.ledger))
	copy(sorted, b.ledger)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, HistoryHeader)
	for _, t := range sorted {
		lines = append(lines, t.Line())
	}
	return lines
}

// appendTransaction commits a transaction to the bank-wide ledger and
// forwards it to the archive when one is attached. Callers hold the bank
// mutex; the archive write runs outside it so a slow archive never stalls
// card operations. Transactions are immutable once committed, so handing the
// pointer to another goroutine is safe.
func (b *Bank) appendTransaction(t *Transaction) {
	b.ledger = append(b.ledger, t)
	if b.archive != nil {
		seq := int64(len(b.ledger))
		go b.archive.Append(seq, t)
	}
}

func (b *Bank) binFor(system string) string {
	if bin, ok := binBySystem[strings.ToUpper(system)]; ok {
		return bin
	}
	return binBySystem[defaultPaymentSystem]
}

// expiryAfter advances the year by the card validity period, keeping month
// and day. A Feb 29 issue date lands on a non-leap year and normalizes to
// Mar 1.
func expiryAfter(issue time.Time) time.Time {
	return time.Date(issue.Year()+expireYears, issue.Month(), issue.Day(), 0, 0, 0, 0, issue.Location())
}
