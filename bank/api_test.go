package bank_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DimaFiz/BankBackEnd/bank"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *bank.Recorder) {
	t.Helper()
	errlog := bank.NewRecorder(discardLogger())
	api := bank.NewAPI(newTestBank(), errlog)
	router := chi.NewRouter()
	api.AppendRoutes(router)
	return router, errlog
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func applyBody(phone, kind string) map[string]any {
	return map[string]any{
		"last_name":      "Иванов",
		"first_name":     "Иван",
		"pin":            "1234",
		"phone":          phone,
		"payment_system": "MIR",
		"kind":           kind,
	}
}

func TestAPI_ApplyForCard(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		CardID        int64  `json:"card_id"`
		UserID        int64  `json:"user_id"`
		PAN           string `json:"pan"`
		AccountNumber string `json:"account_number"`
		Status        string `json:"status"`
		ExpiryDate    string `json:"expiry_date"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.CardID)
	require.Equal(t, int64(1), resp.UserID)
	require.Len(t, resp.PAN, 16)
	require.Len(t, resp.AccountNumber, 20)
	require.Equal(t, "Active", resp.Status)
	require.Equal(t, "2026-01-01", resp.ExpiryDate)
}

func TestAPI_ApplyForCard_Rejections(t *testing.T) {
	router, _ := newTestRouter(t)

	body := applyBody("+79990000001", "simple")
	body["pin"] = "12"
	w := doJSON(t, router, http.MethodPost, "/cards", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body = applyBody("+79990000001", "premium")
	w = doJSON(t, router, http.MethodPost, "/cards", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Phone conflict maps to 422.
	w = doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	require.Equal(t, http.StatusCreated, w.Code)
	conflict := applyBody("+79990000001", "simple")
	conflict["last_name"] = "Петров"
	w = doJSON(t, router, http.MethodPost, "/cards", conflict)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_DepositAndBalance(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/cards/1/deposit", map[string]any{"amount": "150.50"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/cards/1/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "150.50₽", resp["balance"])
}

func TestAPI_Transfer(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000002", "simple"))
	doJSON(t, router, http.MethodPost, "/cards/1/deposit", map[string]any{"amount": 1000})

	w := doJSON(t, router, http.MethodPost, "/cards/1/transfer", map[string]any{"amount": 300, "to_card": 2})
	require.Equal(t, http.StatusNoContent, w.Code)

	// Transfer to an unknown card id is the domain's not-found rejection.
	w = doJSON(t, router, http.MethodPost, "/cards/1/transfer", map[string]any{"amount": 10, "to_card": 99})
	require.Equal(t, http.StatusNotFound, w.Code)

	// Self-transfer is a business-rule rejection.
	w = doJSON(t, router, http.MethodPost, "/cards/1/transfer", map[string]any{"amount": 10, "to_card": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_PayAndErrorMapping(t *testing.T) {
	router, errlog := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	doJSON(t, router, http.MethodPost, "/cards/1/deposit", map[string]any{"amount": 100})

	w := doJSON(t, router, http.MethodPost, "/cards/1/pay", map[string]any{"amount": 10, "mcc": "7995"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, "/cards/1/pay", map[string]any{"amount": 10, "mcc": "58"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/cards/1/pay", map[string]any{"amount": 500, "mcc": "5812"})
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	// Every rejection went through the shared error log.
	require.Len(t, errlog.Entries(), 3)
}

func TestAPI_Histories(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))
	doJSON(t, router, http.MethodPost, "/cards/1/deposit", map[string]any{"amount": 100})

	w := doJSON(t, router, http.MethodGet, "/cards/1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 2)
	require.Equal(t, bank.HistoryHeader, lines[0])

	w = doJSON(t, router, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 2)
}

func TestAPI_CardInfo(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))

	w := doJSON(t, router, http.MethodGet, "/cards/1?fields=card_id,status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Card #1")
	require.Contains(t, w.Body.String(), "Active")
	require.NotContains(t, w.Body.String(), "PAN")

	w = doJSON(t, router, http.MethodGet, "/cards/42", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ChangePIN(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "simple"))

	w := doJSON(t, router, http.MethodPost, "/users/1/pin", map[string]any{"old_pin": "1234", "new_pin": "5678"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPost, "/users/1/pin", map[string]any{"old_pin": "1234", "new_pin": "9999"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/users/7/pin", map[string]any{"old_pin": "5678", "new_pin": "9999"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_CloseCard(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/cards", applyBody("+79990000001", "saving"))

	w := doJSON(t, router, http.MethodPost, "/cards/1/interest", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPost, "/cards/1/close", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/cards/1/balance", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
