package cardgen

import "fmt"

// Account number layout: type code (5) + currency code (3) + control digit (1)
// + branch code (4) + serial (7) = 20 digits.
const accountSerialDigits = 7

// AccountNumber searches the control digit 0..9 for which the weighted
// checksum over (last 3 digits of bic) + candidate is divisible by 10 and
// returns the first match. Weights 7,1,3 repeat across all digits and each
// weighted digit contributes modulo 10.
//
// The control digit sits at a weight-3 position, and 3*d mod 10 covers every
// residue as d runs 0..9, so exactly one digit matches for any serial. The
// error path is kept anyway: a layout change that moved the digit to a
// different weight could make the search fail, and that must not pass
// silently.
func AccountNumber(typeCode, currencyCode, branchCode, bic string, serial int64) (string, error) {
	if !IsDigits(typeCode) || !IsDigits(currencyCode) || !IsDigits(branchCode) {
		return "", fmt.Errorf("account number prefix parts must be digits")
	}
	if len(bic) < 3 || !IsDigits(bic[len(bic)-3:]) {
		return "", fmt.Errorf("bic must end with 3 digits")
	}
	if serial < 0 || serial > 9_999_999 {
		return "", fmt.Errorf("serial %d out of range", serial)
	}

	bicTail := bic[len(bic)-3:]
	tail := branchCode + fmt.Sprintf("%0*d", accountSerialDigits, serial)
	for control := 0; control <= 9; control++ {
		candidate := typeCode + currencyCode + string('0'+byte(control)) + tail
		if weightedChecksum(bicTail+candidate)%10 == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no control digit satisfies the checksum for serial %d", serial)
}

// weightedChecksum applies the repeating 7,1,3 weights and sums each weighted
// digit modulo 10.
func weightedChecksum(digits string) int {
	weights := [3]int{7, 1, 3}
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		sum += (d * weights[i%3]) % 10
	}
	return sum
}

// ValidateAccountNumber recomputes the checksum for a full account number
// against the issuing bank's BIC.
func ValidateAccountNumber(number, bic string) error {
	if len(number) != 20 || !IsDigits(number) {
		return fmt.Errorf("account number must be 20 digits")
	}
	if len(bic) < 3 || !IsDigits(bic[len(bic)-3:]) {
		return fmt.Errorf("bic must end with 3 digits")
	}
	if weightedChecksum(bic[len(bic)-3:]+number)%10 != 0 {
		return fmt.Errorf("invalid account number checksum")
	}
	return nil
}
