package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sonilab/marketmood/app/llm"
)

// Label is a categorical polarity derived from the model. Never persisted;
// a cache entry, not a fact.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

const (
	sentimentMaxChars      = 1000
	insightMinChars        = 100
	insightMaxChars        = 3000
	recommendationMinChars = 300
	recommendationMaxChars = 3500
	keyMetricsMinChars     = 200
	keyMetricsMaxChars     = 3000
	summaryMaxChars        = 1500

	sentimentCacheSize  = 1000
	commentaryCacheSize = 500

	cannotSummarize = "Không thể tóm tắt văn bản."
	summaryFailed   = "Không thể tạo tóm tắt."
)

// TextGenerator is what the analyzer needs from the model call path;
// *llm.Client satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer memoizes per-text sentiment, per-article insight and per-ticker
// commentary behind bounded LRU caches, all keyed by a fingerprint of the
// exact truncated text sent to the model.
type Analyzer struct {
	model TextGenerator

	sentiments      *lru.Cache[string, Label]
	insights        *lru.Cache[string, string]
	recommendations *lru.Cache[string, string]
	keyMetrics      *lru.Cache[string, string]
}

func NewAnalyzer(model TextGenerator) *Analyzer {
	sentiments, _ := lru.New[string, Label](sentimentCacheSize)
	insights, _ := lru.New[string, string](commentaryCacheSize)
	recommendations, _ := lru.New[string, string](commentaryCacheSize)
	keyMetrics, _ := lru.New[string, string](commentaryCacheSize)

	return &Analyzer{
		model:           model,
		sentiments:      sentiments,
		insights:        insights,
		recommendations: recommendations,
		keyMetrics:      keyMetrics,
	}
}

// Sentiment classifies a text as positive, neutral or negative. Model
// failures degrade to neutral; the caller never sees an error.
func (a *Analyzer) Sentiment(ctx context.Context, text string) Label {
	truncated := truncate(text, sentimentMaxChars)
	key := fingerprint(truncated, "")

	if label, ok := a.sentiments.Get(key); ok {
		return label
	}

	reply, err := a.model.Generate(ctx, fmt.Sprintf(sentimentPrompt, truncated))
	if err != nil {
		logModelFailure("sentiment", err)
		return LabelNeutral
	}

	label := ParseLabel(reply)
	a.sentiments.Add(key, label)
	return label
}

// ParseLabel maps a free-text model reply to a label. Positive tokens are
// checked before negative ones; replies mentioning both resolve positive.
// Anything else is neutral.
func ParseLabel(reply string) Label {
	lowered := strings.ToLower(reply)
	if strings.Contains(lowered, "tích cực") || strings.Contains(lowered, "positive") {
		return LabelPositive
	}
	if strings.Contains(lowered, "tiêu cực") || strings.Contains(lowered, "negative") {
		return LabelNegative
	}
	return LabelNeutral
}

// Insight produces a short analytical comment about a ticker from one
// article's body. Returns "" for thin content, an "insufficient information"
// reply, or any model failure.
func (a *Analyzer) Insight(ctx context.Context, articleText, ticker string) string {
	if runeLen(articleText) < insightMinChars {
		return ""
	}

	truncated := truncate(articleText, insightMaxChars)
	key := fingerprint(truncated, ticker)

	if insight, ok := a.insights.Get(key); ok {
		return insight
	}

	reply, err := a.model.Generate(ctx, fmt.Sprintf(insightPrompt, ticker, truncated))
	if err != nil {
		logModelFailure("insight", err)
		return ""
	}

	insight := strings.TrimSpace(reply)
	lowered := strings.ToLower(insight)
	if strings.Contains(lowered, "không đủ thông tin") || strings.Contains(lowered, "không có thông tin") {
		insight = ""
	}

	a.insights.Add(key, insight)
	return insight
}

// Recommendation produces an investment call (MUA / NẮM GIỮ / BÁN / THEO
// DÕI) with a short rationale. Callers invoke it only after Insight
// succeeded.
func (a *Analyzer) Recommendation(ctx context.Context, articleText, ticker string) string {
	if runeLen(articleText) < recommendationMinChars {
		return ""
	}

	truncated := truncate(articleText, recommendationMaxChars)
	key := fingerprint(truncated, ticker)

	if recommendation, ok := a.recommendations.Get(key); ok {
		return recommendation
	}

	reply, err := a.model.Generate(ctx, fmt.Sprintf(recommendationPrompt, ticker, truncated))
	if err != nil {
		logModelFailure("recommendation", err)
		return ""
	}

	recommendation := strings.TrimSpace(reply)
	if strings.Contains(strings.ToLower(recommendation), "không đủ thông tin") {
		recommendation = ""
	}

	a.recommendations.Add(key, recommendation)
	return recommendation
}

// KeyMetrics extracts financial figures mentioned in the article. Gated on
// a prior insight like Recommendation.
func (a *Analyzer) KeyMetrics(ctx context.Context, articleText, ticker string) string {
	if runeLen(articleText) < keyMetricsMinChars {
		return ""
	}

	truncated := truncate(articleText, keyMetricsMaxChars)
	key := fingerprint(truncated, ticker)

	if metrics, ok := a.keyMetrics.Get(key); ok {
		return metrics
	}

	reply, err := a.model.Generate(ctx, fmt.Sprintf(keyMetricsPrompt, ticker, truncated))
	if err != nil {
		logModelFailure("key_metrics", err)
		return ""
	}

	metrics := strings.TrimSpace(reply)
	if strings.Contains(strings.ToLower(metrics), "không tìm thấy") {
		metrics = ""
	}

	a.keyMetrics.Add(key, metrics)
	return metrics
}

// Summarize condenses a text to one short Vietnamese sentence.
func (a *Analyzer) Summarize(ctx context.Context, text string) string {
	reply, err := a.model.Generate(ctx, fmt.Sprintf(summarizePrompt, truncate(text, summaryMaxChars)))
	if err != nil {
		logModelFailure("summarize", err)
		return cannotSummarize
	}
	return strings.TrimSpace(reply)
}

// SummarizeInsights synthesizes a one-sentence daily narrative from
// per-article insights.
func (a *Analyzer) SummarizeInsights(ctx context.Context, ticker string, insights []string) string {
	reply, err := a.model.Generate(ctx, fmt.Sprintf(insightsSummaryPrompt, ticker, strings.Join(insights, "\n")))
	if err != nil {
		logModelFailure("insights_summary", err)
		return summaryFailed
	}
	return strings.TrimSpace(reply)
}

// SummarizeHeadlines synthesizes a one-sentence daily narrative from
// headlines when no insights are available.
func (a *Analyzer) SummarizeHeadlines(ctx context.Context, titles []string) string {
	reply, err := a.model.Generate(ctx, fmt.Sprintf(headlinesSummaryPrompt, strings.Join(titles, "\n")))
	if err != nil {
		logModelFailure("headlines_summary", err)
		return summaryFailed
	}
	return strings.TrimSpace(reply)
}

func logModelFailure(operation string, err error) {
	if errors.Is(err, llm.ErrBudgetExceeded) {
		slog.Warn("Model budget exhausted, degrading", "operation", operation)
		return
	}
	slog.Error("Model call failed, degrading", "operation", operation, "error", err)
}

// truncate bounds a string to at most max runes without splitting a
// multi-byte character.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func runeLen(s string) int {
	return len([]rune(s))
}

func fingerprint(text, ticker string) string {
	hash := sha256.Sum256([]byte(ticker + "|" + text))
	return hex.EncodeToString(hash[:])
}
