package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567", FormatMoney(1234567))
	assert.Equal(t, "$1,234,567.89", FormatMoney(1234567.89))
	assert.Equal(t, "$0", FormatMoney(0))
	assert.Equal(t, "-$500", FormatMoney(-500))
}

func TestFormatMoneyN(t *testing.T) {
	assert.Equal(t, "$1,000.00", FormatMoneyN(1000, 2))
	assert.Equal(t, "$999", FormatMoneyN(999.4, 0))
	assert.Equal(t, "-$12,500", FormatMoneyN(-12500, 0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(12.5))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "-3.2%", FormatPercent(-3.2))
}

func TestTitleCategory(t *testing.T) {
	assert.Equal(t, "Police Department", TitleCategory("POLICE DEPARTMENT"))
	assert.Equal(t, "Taxes", TitleCategory("TAXES"))
	assert.Equal(t, "Public Works", TitleCategory("public_works"))
}
