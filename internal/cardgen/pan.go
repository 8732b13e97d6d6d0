// Package cardgen generates and validates the deterministic card and account
// numbers the bank issues: Luhn-checked 16-digit PANs built from a BIN prefix
// plus a sequential serial, and 20-digit account numbers carrying a weighted
// control digit.
package cardgen

import (
	"fmt"
	"strings"
)

const panLen = 16

// serialDigits is the width of the zero-padded serial between the BIN and the
// Luhn check digit. With a 6-digit BIN this fills the PAN to 15 digits.
const serialDigits = 9

// PANFromSerial builds a 16-digit PAN: bin + zero-padded serial + Luhn check
// digit. The serial must fit into 9 digits.
func PANFromSerial(bin string, serial int64) (string, error) {
	if err := ValidateBIN(bin); err != nil {
		return "", err
	}
	if len(bin)+serialDigits != panLen-1 {
		return "", fmt.Errorf("bin length %d does not fill a %d-digit pan", len(bin), panLen)
	}
	if serial < 0 || serial > 999_999_999 {
		return "", fmt.Errorf("serial %d out of range", serial)
	}
	body := bin + fmt.Sprintf("%0*d", serialDigits, serial)
	return body + luhnCheckDigit(body), nil
}

// luhnCheckDigit doubles every second digit counting from the rightmost (the
// rightmost itself stays), reduces values over 9 by subtracting 9 and returns
// the digit completing the sum to a multiple of 10.
func luhnCheckDigit(body string) string {
	sum, dbl := 0, false
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	cd := (10 - (sum % 10)) % 10
	return string('0' + byte(cd))
}

// ValidatePAN checks length, digits and the Luhn check digit.
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("pan is required")
	}
	if !IsDigits(pan) {
		return fmt.Errorf("pan must contain digits only")
	}
	if len(pan) != panLen {
		return fmt.Errorf("pan must be %d digits (got %d)", panLen, len(pan))
	}
	body := pan[:len(pan)-1]
	if cd := luhnCheckDigit(body); pan[len(pan)-1] != cd[0] {
		return fmt.Errorf("invalid luhn check digit")
	}
	return nil
}

func ValidateBIN(bin string) error {
	if bin == "" {
		return fmt.Errorf("bin is required")
	}
	if !IsDigits(bin) {
		return fmt.Errorf("bin must contain digits only")
	}
	if len(bin) != 6 {
		return fmt.Errorf("bin must be 6 digits")
	}
	return nil
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MaskPAN keeps the BIN and the last four digits, masking the middle.
func MaskPAN(pan string) string {
	n := len(pan)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	if n < 10 {
		return strings.Repeat("*", n-4) + pan[n-4:]
	}
	return pan[:6] + strings.Repeat("*", n-10) + pan[n-4:]
}
