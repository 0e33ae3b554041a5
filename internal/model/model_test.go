package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{Date(2024, 1, 10), Date(2024, 1, 11), 1},
		{Date(2024, 1, 11), Date(2024, 1, 10), 1},
		{Date(2024, 2, 28), Date(2024, 3, 1), 2},
		{Date(2024, 1, 10), time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC), 0},
		{Date(2023, 12, 31), Date(2024, 1, 1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b), "DaysBetween(%s, %s)", tt.a, tt.b)
	}
}

func TestDayTruncates(t *testing.T) {
	got := Day(time.Date(2024, 5, 6, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, Date(2024, 5, 6), got)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"生活費", CategoryLivingExpense},
		{"資産形成", CategoryAssetFormation},
		{"suspected-gift", CategorySuspectedGift},
		{"OTHER", CategoryOther},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		require.NoError(t, err, "ParseCategory(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCategory("食費")
	assert.Error(t, err)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "%s should be valid", c)
		assert.NotEmpty(t, c.Slug())
	}
	assert.False(t, Category("").Valid())
	assert.True(t, Category("").IsZero())
}

func TestCloneIsIndependent(t *testing.T) {
	rows := []Transaction{{Description: "a"}}
	cp := Clone(rows)
	cp[0].Description = "b"
	assert.Equal(t, "a", rows[0].Description)
	assert.Nil(t, Clone(nil))
}
