package classify

import (
	"context"
	"strings"
	"time"

	"github.com/tsucho-dev/tsucho/internal/logger"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// Generator is a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

const promptTemplate = `あなたは相続税調査の専門家です。以下の銀行取引の摘要欄のテキストから、最も適切なカテゴリを1つだけ選んで回答してください。
回答はカテゴリ名のみを返し、それ以外の文章は一切含めないでください。

カテゴリ候補:
- 生活費 (スーパー、コンビニ、水道光熱費、通信費、NHKなど)
- 資産形成 (証券会社、定期預金作成、保険料など)
- 贈与疑い (家族名義への振込、使途不明な個人への送金など)
- その他 (手数料、利息、不明なもの)

摘要: `

// Prompt returns the classification prompt for one description.
func Prompt(text string) string {
	return promptTemplate + text
}

// ParseAnswer picks the first category label found in a free-text answer.
// Anything else is その他.
func ParseAnswer(answer string) model.Category {
	answer = strings.TrimSpace(answer)
	for _, c := range model.Categories {
		if strings.Contains(answer, string(c)) {
			return c
		}
	}
	return model.CategoryOther
}

// Fallback asks a Generator about descriptions the rules classify as その他.
// Generator failures are logged and degrade to その他.
type Fallback struct {
	rules   Classifier
	gen     Generator
	timeout time.Duration
}

// NewFallback wraps rules with a generative fallback. A zero timeout
// leaves the deadline to ctx.
func NewFallback(rules Classifier, gen Generator, timeout time.Duration) *Fallback {
	return &Fallback{rules: rules, gen: gen, timeout: timeout}
}

// Classify implements Classifier.
func (f *Fallback) Classify(ctx context.Context, text string) Verdict {
	v := f.rules.Classify(ctx, text)
	if !v.IsFixed() || v.category != model.CategoryOther {
		return v
	}

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	answer, err := f.gen.Generate(callCtx, Prompt(text))
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("description", text).Msg("generative classification failed")
		return Fixed(model.CategoryOther)
	}
	return Fixed(ParseAnswer(answer))
}
