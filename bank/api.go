package bank

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// API is the HTTP surface over a Bank.
type API struct {
	bank   *Bank
	errlog *Recorder
}

func NewAPI(bank *Bank, errlog *Recorder) *API {
	return &API{bank: bank, errlog: errlog}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/", a.applyForCard)
		r.Route("/{cardID}", func(r chi.Router) {
			r.Get("/", a.cardInfo)
			r.Get("/balance", a.balance)
			r.Get("/history", a.cardHistory)
			r.Post("/deposit", a.deposit)
			r.Post("/transfer", a.transfer)
			r.Post("/pay", a.pay)
			r.Post("/interest", a.accrueInterest)
			r.Post("/close", a.closeCard)
		})
	})
	r.Get("/history", a.globalHistory)
	r.Post("/users/{userID}/pin", a.changePIN)
}

type cardResponse struct {
	CardID        int64  `json:"card_id"`
	UserID        int64  `json:"user_id"`
	PAN           string `json:"pan"`
	AccountNumber string `json:"account_number"`
	PaymentSystem string `json:"payment_system"`
	Currency      string `json:"currency"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	IssueDate     string `json:"issue_date"`
	ExpiryDate    string `json:"expiry_date"`
}

func newCardResponse(c *Card) cardResponse {
	return cardResponse{
		CardID:        c.ID,
		UserID:        c.Account().Owner.ID,
		PAN:           c.PAN,
		AccountNumber: c.Account().Number,
		PaymentSystem: c.PaymentSystem,
		Currency:      c.Currency,
		Kind:          string(c.Kind),
		Status:        string(c.Status),
		IssueDate:     c.IssueDate.Format("2006-01-02"),
		ExpiryDate:    c.ExpiryDate.Format("2006-01-02"),
	}
}

func (a *API) applyForCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LastName      string           `json:"last_name"`
		FirstName     string           `json:"first_name"`
		PIN           string           `json:"pin"`
		Phone         string           `json:"phone"`
		PaymentSystem string           `json:"payment_system"`
		Kind          string           `json:"kind"`
		CashbackRate  *decimal.Decimal `json:"cashback_rate,omitempty"`
		InterestRate  *decimal.Decimal `json:"interest_rate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := CardRequest{
		LastName:      body.LastName,
		FirstName:     body.FirstName,
		PIN:           body.PIN,
		Phone:         body.Phone,
		PaymentSystem: body.PaymentSystem,
		CashbackRate:  body.CashbackRate,
		InterestRate:  body.InterestRate,
	}
	switch body.Kind {
	case "", string(KindSimple):
		req.Kind = KindSimple
	case string(KindCashback):
		req.Kind = KindCashback
	case string(KindSaving):
		req.Kind = KindSaving
	default:
		http.Error(w, "unknown card kind: "+body.Kind, http.StatusBadRequest)
		return
	}

	card, err := a.bank.ApplyForCard(req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCardResponse(card))
}

func (a *API) card(w http.ResponseWriter, r *http.Request) (*Card, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid card id", http.StatusBadRequest)
		return nil, false
	}
	card, ok := a.bank.Card(id)
	if !ok {
		a.writeError(w, errRecipientNotFound)
		return nil, false
	}
	return card, true
}

func (a *API) cardInfo(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	var fields []string
	if raw := r.URL.Query().Get("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}
	info, err := card.Info(fields)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(info))
}

func (a *API) balance(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	balance, err := card.Balance()
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"balance": formatMoney(balance),
	})
}

func (a *API) deposit(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := card.Deposit(body.Amount); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) transfer(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
		ToCard int64           `json:"to_card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// A missing recipient surfaces as the domain's not-found error.
	to, _ := a.bank.Card(body.ToCard)
	if err := card.Transfer(body.Amount, to); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) pay(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
		MCC    string          `json:"mcc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := card.Pay(body.Amount, body.MCC); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) accrueInterest(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	if err := card.AccrueInterest(); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) closeCard(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	card.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) cardHistory(w http.ResponseWriter, r *http.Request) {
	card, ok := a.card(w, r)
	if !ok {
		return
	}
	history, err := card.TransactionHistory()
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (a *API) globalHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.bank.GlobalHistory())
}

func (a *API) changePIN(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	user, ok := a.bank.Customer(id)
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	var body struct {
		OldPIN string `json:"old_pin"`
		NewPIN string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := user.ChangePIN(body.OldPIN, body.NewPIN); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError records the failure in the error log and maps its kind to an
// HTTP status. Non-bank errors are internal.
func (a *API) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	if swallowed := a.errlog.Swallow(err); swallowed != nil {
		http.Error(w, message, http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAccess):
		status = http.StatusForbidden
	case errors.Is(err, ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, ErrBusinessRule):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, message, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
