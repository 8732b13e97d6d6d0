package bank

import "github.com/DimaFiz/BankBackEnd/internal/cardgen"

// User is an identity record. Phone numbers identify customers bank-wide, so
// a user is never destroyed and only the PIN can change.
type User struct {
	ID        int64
	LastName  string
	FirstName string
	Phone     string

	pin      string
	bank     *Bank
	Accounts []*Account
	Cards    []*Card
}

func (u *User) lock() func() {
	if u.bank == nil {
		return func() {}
	}
	u.bank.mu.Lock()
	return u.bank.mu.Unlock
}

// ChangePIN replaces the PIN when the old one matches. Both values must be
// exactly 4 digits; on any failure nothing changes.
func (u *User) ChangePIN(oldPIN, newPIN string) error {
	defer u.lock()()

	if len(oldPIN) != 4 || len(newPIN) != 4 {
		return errPINInvalid
	}
	if !cardgen.IsDigits(oldPIN) || !cardgen.IsDigits(newPIN) {
		return errPINFormatInvalid
	}
	if oldPIN != u.pin {
		return errPINMismatch
	}
	u.pin = newPIN
	return nil
}
