package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsucho-dev/tsucho/internal/model"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   model.Category
	}{
		{"生活費", model.CategoryLivingExpense},
		{"  資産形成\n", model.CategoryAssetFormation},
		{"カテゴリ: 贈与疑い です", model.CategorySuspectedGift},
		{"その他", model.CategoryOther},
		{"生活費または贈与疑い", model.CategoryLivingExpense},
		{"I don't know", model.CategoryOther},
		{"", model.CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAnswer(tt.answer), "ParseAnswer(%q)", tt.answer)
	}
}

func TestPromptIncludesDescription(t *testing.T) {
	p := Prompt("カ）ヤマダショウジ")
	assert.Contains(t, p, "摘要: カ）ヤマダショウジ")
	for _, c := range model.Categories {
		assert.Contains(t, p, string(c))
	}
}

func TestFallback_OnlyConsultedForOther(t *testing.T) {
	gen := &fakeGenerator{answer: "資産形成"}
	f := NewFallback(NewRuleEngine(DefaultKeywords(), DefaultGiftThreshold), gen, time.Second)
	ctx := context.Background()

	assert.Equal(t, model.CategoryLivingExpense, Categorize(ctx, f, "イオン", 100, 0))
	assert.Equal(t, model.CategorySuspectedGift, Categorize(ctx, f, "振込", 2_000_000, 0))
	assert.Zero(t, gen.calls.Load())

	assert.Equal(t, model.CategoryAssetFormation, Categorize(ctx, f, "カ）ヤマダショウジ", 100, 0))
	assert.EqualValues(t, 1, gen.calls.Load())
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "カ）ヤマダショウジ")
}

func TestFallback_DegradesOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	f := NewFallback(NewRuleEngine(DefaultKeywords(), DefaultGiftThreshold), gen, time.Second)

	got := Categorize(context.Background(), f, "謎の取引", 100, 0)
	assert.Equal(t, model.CategoryOther, got)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestFallback_UnrecognisedAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: "食費"}
	f := NewFallback(NewRuleEngine(DefaultKeywords(), DefaultGiftThreshold), gen, 0)

	assert.Equal(t, model.CategoryOther, Categorize(context.Background(), f, "謎", 1, 0))
}
