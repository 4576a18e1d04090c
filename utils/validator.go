// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	curpRegex  = regexp.MustCompile(`^[A-Z][AEIOUX][A-Z]{2}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)
	rfcRegex   = regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}[A-Z0-9]{3}$`)
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateCURP checks the 18-character CURP format.
func ValidateCURP(curp string) bool {
	return curpRegex.MatchString(strings.ToUpper(strings.TrimSpace(curp)))
}

// ValidateRFC checks the RFC format (12 characters for companies, 13 for individuals).
func ValidateRFC(rfc string) bool {
	return rfcRegex.MatchString(strings.ToUpper(strings.TrimSpace(rfc)))
}

// ValidateCLABE checks an 18-digit CLABE including its control digit
// (weights 3-7-1 over the first 17 digits, mod 10).
func ValidateCLABE(clabe string) bool {
	clabe = strings.TrimSpace(clabe)
	if len(clabe) != 18 {
		return false
	}
	weights := [3]int{3, 7, 1}
	sum := 0
	for i := 0; i < 17; i++ {
		d := clabe[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += (int(d-'0') * weights[i%3]) % 10
	}
	last := clabe[17]
	if last < '0' || last > '9' {
		return false
	}
	control := (10 - sum%10) % 10
	return int(last-'0') == control
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
