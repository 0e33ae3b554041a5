package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsucho-dev/tsucho/internal/model"
)

func TestFormatAccountID(t *testing.T) {
	got, err := FormatAccountID("三菱UFJ銀行", "1234567")
	require.NoError(t, err)
	assert.Equal(t, "三菱UFJ銀行_1234567", got)

	got, err = FormatAccountID("  みずほ銀行 ", " 0001 ")
	require.NoError(t, err)
	assert.Equal(t, "みずほ銀行_0001", got)
}

func TestFormatAccountID_Invalid(t *testing.T) {
	tests := []struct {
		bank, number, want string
	}{
		{"", "1234", "bank name"},
		{"みずほ銀行", "", "account number"},
		{"みずほ銀行", "12_34", "must not contain"},
	}
	for _, tt := range tests {
		_, err := FormatAccountID(tt.bank, tt.number)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestSplitAccountID(t *testing.T) {
	tests := []struct {
		id, bank, number string
		ok               bool
	}{
		{"三菱UFJ銀行_1234567", "三菱UFJ銀行", "1234567", true},
		{"ゆうちょ_銀行_0001", "ゆうちょ_銀行", "0001", true},
		{"noseparator", "", "", false},
	}
	for _, tt := range tests {
		bank, number, ok := SplitAccountID(tt.id)
		assert.Equal(t, tt.ok, ok, "SplitAccountID(%q)", tt.id)
		assert.Equal(t, tt.bank, bank)
		assert.Equal(t, tt.number, number)
	}
}

func TestTransferRefRoundTrip(t *testing.T) {
	date := model.Date(2024, 1, 11)
	ref := FormatTransferRef("みずほ 銀行_7654321", date)
	assert.Equal(t, "みずほ 銀行_7654321 2024-01-11", ref)

	acct, got, err := ParseTransferRef(ref)
	require.NoError(t, err)
	assert.Equal(t, "みずほ 銀行_7654321", acct)
	assert.True(t, date.Equal(got))
}

func TestParseTransferRef_Invalid(t *testing.T) {
	for _, ref := range []string{"", "nospace", "acct 2024/01/11", " 2024-01-11"} {
		_, _, err := ParseTransferRef(ref)
		assert.Error(t, err, "ParseTransferRef(%q)", ref)
	}
}
