package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCURP(t *testing.T) {
	assert.True(t, ValidateCURP("GOMC900514HDFRRL09"))
	assert.True(t, ValidateCURP(" gomc900514hdfrrl09 ")) // normalized before matching

	assert.False(t, ValidateCURP(""))
	assert.False(t, ValidateCURP("GOMC900514HDFRRL0"))    // 17 chars
	assert.False(t, ValidateCURP("GTMC900514HDFRRL09"))   // second char must be a vowel or X
	assert.False(t, ValidateCURP("GOMC9005X4HDFRRL09"))   // letter inside the date
	assert.False(t, ValidateCURP("GOMC900514XDFRRL09"))   // sex marker must be H or M
	assert.False(t, ValidateCURP("GOMC900514HDFRRL099H")) // too long
}

func TestValidateRFC(t *testing.T) {
	assert.True(t, ValidateRFC("GOMC900514AB1")) // individual, 13 chars
	assert.True(t, ValidateRFC("ABC850101XY2"))  // company, 12 chars
	assert.True(t, ValidateRFC("Ñ&A850101XY2"))

	assert.False(t, ValidateRFC(""))
	assert.False(t, ValidateRFC("GOMC90051AB1"))   // 5-digit date
	assert.False(t, ValidateRFC("GOMC900514AB12")) // too long
	assert.False(t, ValidateRFC("G2MC900514AB1"))  // digit in the name block
}

func TestValidateCLABE(t *testing.T) {
	assert.True(t, ValidateCLABE("032180000118359719"))
	assert.True(t, ValidateCLABE(" 032180000118359719 "))

	assert.False(t, ValidateCLABE(""))
	assert.False(t, ValidateCLABE("03218000011835971"))   // 17 digits
	assert.False(t, ValidateCLABE("0321800001183597199")) // 19 digits
	assert.False(t, ValidateCLABE("032180000118359710"))  // wrong control digit
	assert.False(t, ValidateCLABE("03218000011835971X"))
	assert.False(t, ValidateCLABE("A32180000118359719"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("carlos@example.com"))
	assert.True(t, ValidateEmail("a.b+c@sub.domain.mx"))

	assert.False(t, ValidateEmail("carlos@example"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$12,345.50", FormatAmount("12345.5"))
	assert.Equal(t, "$1,000,000.00", FormatAmount("1000000"))
	assert.Equal(t, "$999.99", FormatAmount("999.99"))
	assert.Equal(t, "$0.97", FormatAmount("0.975")) // truncated, not rounded
	assert.Equal(t, "-$500.00", FormatAmount("-500"))
	assert.Equal(t, "", FormatAmount(""))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}
