package currency

import (
	"errors"
	"fmt"
	"strings"
)

// Amounts travel through the system as integer micro-units: 1 USDC = 1e6 micro-units.
// Conversion to decimal strings happens only at display and ABI-encoding boundaries.
const MicroPerUnit = 1_000_000

const (
	TagMicroUSDC = "microUSDC"
	TagUSDC      = "USDC"
)

// legacyMicroThreshold separates already-converted amounts from micro-unit
// amounts under the ambiguous "USDC" tag: records with values above it are
// assumed to be micro-units. Mid-range values stay ambiguous, the boundary
// matches what the backend has historically produced.
const legacyMicroThreshold = 999

var (
	ErrAmountEmpty     = errors.New("amount is empty")
	ErrAmountNegative  = errors.New("amount must be positive")
	ErrAmountMalformed = errors.New("amount is not a valid decimal number")
	ErrAmountPrecision = errors.New("amount has more than 6 decimal places")
	ErrAmountOverflow  = errors.New("amount is too large")
)

// ToMicroUSDC parses a decimal USDC string ("1.5", "0.000001") into micro-units.
// Uses integer math only, rejects more than 6 fractional digits.
func ToMicroUSDC(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, ErrAmountEmpty
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrAmountNegative
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrAmountMalformed
	}
	if len(frac) > 6 {
		return 0, ErrAmountPrecision
	}

	var units int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, ErrAmountMalformed
		}
		d := int64(c - '0')
		if units > (1<<63-1-d)/10 {
			return 0, ErrAmountOverflow
		}
		units = units*10 + d
	}

	var micro int64
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, ErrAmountMalformed
		}
		micro = micro*10 + int64(c-'0')
	}
	for i := len(frac); i < 6; i++ {
		micro *= 10
	}

	if units > ((1<<63-1)-micro)/MicroPerUnit {
		return 0, ErrAmountOverflow
	}
	return units*MicroPerUnit + micro, nil
}

// FromMicroUSDC renders micro-units as a full-precision decimal USDC string.
// ToMicroUSDC(FromMicroUSDC(m)) == m for any non-negative m.
func FromMicroUSDC(micro int64) string {
	return fmt.Sprintf("%d.%06d", micro/MicroPerUnit, micro%MicroPerUnit)
}

// Display formats a stored amount for the UI according to its currency tag.
// "microUSDC" amounts are always micro-units. The legacy "USDC" tag (and any
// unknown tag) is ambiguous: old records stored either micro-units or
// already-converted units under it, so magnitude decides - values above
// legacyMicroThreshold are treated as micro-units, the rest as units.
func Display(amount int64, currencyTag string) string {
	micro := amount
	switch currencyTag {
	case TagMicroUSDC:
		// always micro-units
	default:
		if amount <= legacyMicroThreshold {
			micro = amount * MicroPerUnit
		}
	}
	// 4 decimal places, truncating sub-hundredth-of-a-cent dust
	return fmt.Sprintf("$%d.%04d", micro/MicroPerUnit, (micro%MicroPerUnit)/100)
}
