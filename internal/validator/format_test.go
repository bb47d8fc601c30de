package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://example.com/photo.jpg"))
	assert.False(t, ValidateURL("not a url"))
	assert.False(t, ValidateURL(""))
}

func TestValidateTimezone(t *testing.T) {
	assert.True(t, ValidateTimezone("America/New_York"))
	assert.True(t, ValidateTimezone("+05:30"))
	assert.True(t, ValidateTimezone("-08:00"))
	assert.False(t, ValidateTimezone("Not/AZone"))
	assert.False(t, ValidateTimezone(""))
}

func TestValidateLocale(t *testing.T) {
	assert.True(t, ValidateLocale("en-US"))
	assert.True(t, ValidateLocale("fr"))
	assert.False(t, ValidateLocale(""))
	assert.False(t, ValidateLocale("!!!"))
}

func TestValidateX509Certificate(t *testing.T) {
	assert.True(t, ValidateX509Certificate(strings.Repeat("A", 120)))
	assert.False(t, ValidateX509Certificate(strings.Repeat("A", 10)))
	assert.False(t, ValidateX509Certificate(strings.Repeat("!", 120)))
}
