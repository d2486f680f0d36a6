package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sonilab/marketmood/app/aggregator"
	"github.com/sonilab/marketmood/app/analysis"
	"github.com/sonilab/marketmood/app/crawler"
	"github.com/sonilab/marketmood/app/database"
)

type fakeRepo struct {
	bySource map[string][]database.Article
}

func (f *fakeRepo) InsertArticle(ctx context.Context, article database.Article) error { return nil }

func (f *fakeRepo) ExistsByURL(ctx context.Context, source, fullURL string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) FindArticles(ctx context.Context, source string, filter database.ArticleFilter, limit int) ([]database.Article, error) {
	return f.bySource[source], nil
}

func (f *fakeRepo) CountArticles(ctx context.Context, source string, filter database.ArticleFilter) (int, error) {
	return len(f.bySource[source]), nil
}

func (f *fakeRepo) TickerCounts(ctx context.Context, source string, since int64, limit int) ([]database.TickerCount, error) {
	return nil, nil
}

func (f *fakeRepo) CoMentionedTickers(ctx context.Context, source, ticker string, limit int) ([]database.TickerCount, error) {
	return nil, nil
}

func (f *fakeRepo) TotalArticleCount(ctx context.Context) (int, error) { return 0, nil }

// keywordModel labels sentiment by keywords and answers summaries with a
// fixed line.
type keywordModel struct{}

func (keywordModel) Generate(ctx context.Context, prompt string) (string, error) {
	lowered := strings.ToLower(prompt)
	switch {
	case strings.Contains(lowered, "tóm tắt"), strings.Contains(lowered, "summarize"):
		return "Tóm tắt trong ngày.", nil
	case strings.Contains(lowered, "tăng trần"):
		return "Tích cực", nil
	case strings.Contains(lowered, "giảm sâu"):
		return "Tiêu cực", nil
	default:
		return "Trung lập", nil
	}
}

func newTestEngine(repo *fakeRepo, sources ...string) *Engine {
	agg := aggregator.New(repo, func() []string { return sources })
	analyzer := analysis.NewAnalyzer(keywordModel{})
	fetcher := crawler.NewFetcher("test-agent", time.Second, 0)
	return New(agg, analyzer, fetcher, time.UTC)
}

// deadURL never resolves, so content fetches fail fast and yield no insight.
const deadURL = "http://127.0.0.1:1/bai-viet"

func day(yyyy int, mm time.Month, dd, hh int) int64 {
	return time.Date(yyyy, mm, dd, hh, 0, 0, 0, time.UTC).Unix()
}

func TestAnalyzeNewsLabelsArticles(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI tăng trần phiên sáng", Description: "Thanh khoản cải thiện rõ rệt", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
			{Title: "SSI giảm sâu cuối phiên", Description: "Áp lực bán gia tăng mạnh", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 14)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn")

	got, err := eng.AnalyzeNews(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 analyzed articles, got %d", len(got))
	}
	// Newest first.
	if got[0].Sentiment != analysis.LabelNegative {
		t.Errorf("Expected newest article negative, got %v", got[0].Sentiment)
	}
	if got[1].Sentiment != analysis.LabelPositive {
		t.Errorf("Expected older article positive, got %v", got[1].Sentiment)
	}
	if got[0].Summary != "Áp lực bán gia tăng mạnh" {
		t.Errorf("Expected description as summary, got %q", got[0].Summary)
	}
}

func TestAnalyzeNewsSkipsThinArticles(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI", Description: "", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn")

	got, err := eng.AnalyzeNews(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected thin article skipped, got %d results", len(got))
	}
}

func TestAnalyzeNewsCachesResults(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI tăng trần phiên sáng", Description: "Thanh khoản cải thiện", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn")

	first, err := eng.AnalyzeNews(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Changing the store must not change the cached view within the TTL.
	repo.bySource["cafef_vn"] = nil

	second, err := eng.AnalyzeNews(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Errorf("Expected cached result, got %d then %d", len(first), len(second))
	}
}

func TestDailySummaries(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI tăng trần phiên một", Description: "Dòng tiền vào mạnh", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
			{Title: "SSI giảm sâu phiên chiều", Description: "Khối ngoại bán ròng", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 14)},
			{Title: "SSI tăng trần tiếp tục", Description: "Kỳ vọng kết quả quý", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 26, 10)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn")

	got, err := eng.DailySummaries(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(got))
	}

	// Newest day first.
	if got[0].Date != "2025-03-27" || got[1].Date != "2025-03-26" {
		t.Errorf("Expected days sorted desc, got %s %s", got[0].Date, got[1].Date)
	}

	first := got[0]
	if first.ArticleCount != 2 || first.PositiveCount != 1 || first.NegativeCount != 1 {
		t.Errorf("Unexpected counts: %+v", first)
	}
	if first.Score != 0 {
		t.Errorf("Expected score 0, got %f", first.Score)
	}
	if first.Verdict != neutralVerdict {
		t.Errorf("Expected %q, got %q", neutralVerdict, first.Verdict)
	}
	// No insights and under three headlines: the positive title stands in.
	if first.Narrative != "SSI tăng trần phiên một" {
		t.Errorf("Expected positive title as narrative, got %q", first.Narrative)
	}

	second := got[1]
	if second.Verdict != positiveVerdict {
		t.Errorf("Expected %q for all-positive day, got %q", positiveVerdict, second.Verdict)
	}
}

func TestDailySummariesTopNewsCapped(t *testing.T) {
	articles := make([]database.Article, 0, 4)
	for i := 0; i < 4; i++ {
		articles = append(articles, database.Article{
			Title:       "SSI tăng trần phiên " + strings.Repeat("i", i+1),
			Description: "Mô tả đủ dài cho phân tích",
			Source:      "cafef_vn",
			FullURL:     deadURL,
			PostTime:    day(2025, 3, 27, 9+i),
		})
	}
	repo := &fakeRepo{bySource: map[string][]database.Article{"cafef_vn": articles}}

	eng := newTestEngine(repo, "cafef_vn")

	got, err := eng.DailySummaries(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(got))
	}
	if len(got[0].TopNews) != 2 {
		t.Errorf("Expected top news capped at 2, got %d", len(got[0].TopNews))
	}
	// Four headlines: the day narrative comes from the headline summary.
	if got[0].Narrative != "Tóm tắt trong ngày." {
		t.Errorf("Expected headline summary narrative, got %q", got[0].Narrative)
	}
}

func TestSentimentDistribution(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI tăng trần một", Description: "Mô tả đủ dài", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
			{Title: "SSI giảm sâu hai", Description: "Mô tả đủ dài", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 10)},
		},
		"vnexpress_net": {
			{Title: "SSI đi ngang ba", Description: "Mô tả đủ dài", Source: "vnexpress_net", FullURL: deadURL, PostTime: day(2025, 3, 27, 11)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn", "vnexpress_net")

	got, err := eng.SentimentDistribution(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}

	if got.Total != 3 || got.Positive != 1 || got.Negative != 1 || got.Neutral != 1 {
		t.Errorf("Unexpected counts: %+v", got)
	}
	if got.PositivePct+got.NeutralPct+got.NegativePct != 100 {
		t.Errorf("Expected percentages to sum to 100, got %d", got.PositivePct+got.NeutralPct+got.NegativePct)
	}
	if got.PositivePct != 34 || got.NeutralPct != 33 || got.NegativePct != 33 {
		t.Errorf("Expected 34/33/33 split, got %d/%d/%d", got.PositivePct, got.NeutralPct, got.NegativePct)
	}
	if got.BySource["cafef_vn"].Total != 2 || got.BySource["vnexpress_net"].Total != 1 {
		t.Errorf("Unexpected per-source totals: %+v", got.BySource)
	}
}

func TestTimeline(t *testing.T) {
	repo := &fakeRepo{bySource: map[string][]database.Article{
		"cafef_vn": {
			{Title: "SSI tăng trần một", Description: "Mô tả đủ dài", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 26, 9)},
			{Title: "SSI tăng trần hai", Description: "Mô tả đủ dài", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 9)},
			{Title: "SSI giảm sâu ba", Description: "Mô tả đủ dài", Source: "cafef_vn", FullURL: deadURL, PostTime: day(2025, 3, 27, 10)},
		},
	}}

	eng := newTestEngine(repo, "cafef_vn")

	got, err := eng.Timeline(context.Background(), "SSI", database.ArticleFilter{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(got))
	}
	if got[0].Date != "2025-03-26" || got[1].Date != "2025-03-27" {
		t.Errorf("Expected ascending dates, got %s %s", got[0].Date, got[1].Date)
	}
	if got[0].Score != 1 || got[0].Count != 1 {
		t.Errorf("Expected score 1 count 1 for first day, got %f %d", got[0].Score, got[0].Count)
	}
	if got[1].Score != 0 || got[1].Count != 2 {
		t.Errorf("Expected score 0 count 2 for second day, got %f %d", got[1].Score, got[1].Count)
	}
}

func TestVerdictThresholds(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.5, positiveVerdict},
		{0.31, positiveVerdict},
		{0.3, neutralVerdict},
		{0, neutralVerdict},
		{-0.3, neutralVerdict},
		{-0.31, negativeVerdict},
		{-1, negativeVerdict},
	}

	for _, tt := range tests {
		if got := verdictOf(tt.score); got != tt.expected {
			t.Errorf("verdictOf(%f) = %q, expected %q", tt.score, got, tt.expected)
		}
	}
}

func TestPercentagesExactSplit(t *testing.T) {
	positive, neutral, negative := percentages(6, 3, 1)
	if positive != 60 || neutral != 30 || negative != 10 {
		t.Errorf("Expected 60/30/10, got %d/%d/%d", positive, neutral, negative)
	}
}

func TestPercentagesEqualThirds(t *testing.T) {
	positive, neutral, negative := percentages(1, 1, 1)
	if positive != 34 || neutral != 33 || negative != 33 {
		t.Errorf("Expected 34/33/33, got %d/%d/%d", positive, neutral, negative)
	}
}

func TestPercentagesAlwaysSumToHundred(t *testing.T) {
	cases := [][3]int{{1, 2, 4}, {5, 0, 2}, {7, 7, 3}, {0, 0, 1}, {13, 17, 19}}
	for _, c := range cases {
		positive, neutral, negative := percentages(c[0], c[1], c[2])
		if positive+neutral+negative != 100 {
			t.Errorf("percentages(%v) sums to %d", c, positive+neutral+negative)
		}
	}
}

func TestPercentagesZeroTotal(t *testing.T) {
	positive, neutral, negative := percentages(0, 0, 0)
	if positive != 0 || neutral != 0 || negative != 0 {
		t.Errorf("Expected 0/0/0, got %d/%d/%d", positive, neutral, negative)
	}
}

func TestScoreOf(t *testing.T) {
	if got := scoreOf(3, 1, 4); got != 0.5 {
		t.Errorf("Expected 0.5, got %f", got)
	}
	if got := scoreOf(0, 0, 0); got != 0 {
		t.Errorf("Expected 0 for empty day, got %f", got)
	}
}
