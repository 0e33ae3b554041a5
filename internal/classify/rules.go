// Package classify assigns a category to each transaction description.
//
// A RuleEngine answers deterministically from keyword tiers. A Fallback
// decorator consults a Generator for descriptions the rules leave as その他.
// Pipeline runs either over a case, once per distinct description.
package classify

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// DefaultGiftThreshold is the amount_out at which a transfer is a suspected gift.
const DefaultGiftThreshold int64 = 1_000_000

// Classifier maps a description to a Verdict.
type Classifier interface {
	Classify(ctx context.Context, text string) Verdict
}

// Verdict is either a fixed category or, for transfers, a category that
// depends on the outgoing amount.
type Verdict struct {
	category      model.Category
	giftThreshold int64
}

// Fixed returns a verdict that ignores the amounts.
func Fixed(c model.Category) Verdict { return Verdict{category: c} }

// ByAmount returns a verdict of 贈与疑い when amount_out reaches threshold
// and 生活費 otherwise.
func ByAmount(threshold int64) Verdict { return Verdict{giftThreshold: threshold} }

// IsFixed reports whether the verdict ignores the amounts.
func (v Verdict) IsFixed() bool { return v.category != "" }

// For resolves the verdict for one row.
func (v Verdict) For(amountOut, amountIn int64) model.Category {
	if v.IsFixed() {
		return v.category
	}
	if amountOut >= v.giftThreshold {
		return model.CategorySuspectedGift
	}
	return model.CategoryLivingExpense
}

// Categorize classifies a single row.
func Categorize(ctx context.Context, c Classifier, text string, amountOut, amountIn int64) model.Category {
	return c.Classify(ctx, text).For(amountOut, amountIn)
}

// Keywords are the rule engine's keyword lists, one per tier.
type Keywords struct {
	LivingExpense  []string `yaml:"living_expense"`
	AssetFormation []string `yaml:"asset_formation"`
	Transfer       []string `yaml:"transfer"`
	Other          []string `yaml:"other"`
}

// DefaultKeywords returns the built-in keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		LivingExpense: []string{
			"イオン", "セブン", "ローソン", "ファミリーマート", "スーパー",
			"電気", "ガス", "水道", "NHK", "ドコモ", "東京電力", "カード",
		},
		AssetFormation: []string{"証券", "定期", "保険", "投信", "積立", "国債"},
		Transfer:       []string{"振込", "送金", "振替"},
		Other:          []string{"手数料", "利息", "利子"},
	}
}

type tier struct {
	keywords []string
	verdict  Verdict
}

// RuleEngine classifies by keyword. Tiers are checked in order:
// living expense, asset formation, transfer, other. The first hit wins;
// no hit yields その他.
type RuleEngine struct {
	tiers []tier
}

// NewRuleEngine builds a rule engine from keyword lists.
func NewRuleEngine(kw Keywords, giftThreshold int64) *RuleEngine {
	return &RuleEngine{tiers: []tier{
		{normalizeAll(kw.LivingExpense), Fixed(model.CategoryLivingExpense)},
		{normalizeAll(kw.AssetFormation), Fixed(model.CategoryAssetFormation)},
		{normalizeAll(kw.Transfer), ByAmount(giftThreshold)},
		{normalizeAll(kw.Other), Fixed(model.CategoryOther)},
	}}
}

// Classify implements Classifier.
func (e *RuleEngine) Classify(_ context.Context, text string) Verdict {
	s := normalize(text)
	for _, t := range e.tiers {
		for _, kw := range t.keywords {
			if strings.Contains(s, kw) {
				return t.verdict
			}
		}
	}
	return Fixed(model.CategoryOther)
}

// normalize folds half-width katakana and full-width ASCII, then upper-cases.
func normalize(s string) string {
	return strings.ToUpper(norm.NFC.String(width.Fold.String(s)))
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = normalize(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
