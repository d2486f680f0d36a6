package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeModel struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	return f.reply, f.err
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		reply    string
		expected Label
	}{
		{"Tích cực", LabelPositive},
		{"TÍCH CỰC", LabelPositive},
		{"Kết quả: tích cực.", LabelPositive},
		{"The sentiment is positive", LabelPositive},
		{"Tiêu cực", LabelNegative},
		{"negative outlook", LabelNegative},
		{"Trung lập", LabelNeutral},
		{"không rõ", LabelNeutral},
		{"", LabelNeutral},
	}

	for _, tt := range tests {
		if got := ParseLabel(tt.reply); got != tt.expected {
			t.Errorf("ParseLabel(%q) = %v, expected %v", tt.reply, got, tt.expected)
		}
	}
}

func TestParseLabelPositiveWinsOverNegative(t *testing.T) {
	reply := "Vừa tích cực vừa tiêu cực"
	if got := ParseLabel(reply); got != LabelPositive {
		t.Errorf("Expected positive when both labels appear, got %v", got)
	}
}

func TestSentimentDegradesToNeutralOnError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	a := NewAnalyzer(model)

	if got := a.Sentiment(context.Background(), "Cổ phiếu SSI tăng trần"); got != LabelNeutral {
		t.Errorf("Expected neutral on model failure, got %v", got)
	}
}

func TestSentimentCachesByTruncatedText(t *testing.T) {
	model := &fakeModel{reply: "Tích cực"}
	a := NewAnalyzer(model)

	text := "Lợi nhuận quý tăng mạnh"
	a.Sentiment(context.Background(), text)
	a.Sentiment(context.Background(), text)

	if model.calls != 1 {
		t.Errorf("Expected 1 model call with caching, got %d", model.calls)
	}
}

func TestSentimentFailureNotCached(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	a := NewAnalyzer(model)

	a.Sentiment(context.Background(), "text")
	model.err = nil
	model.reply = "Tiêu cực"

	if got := a.Sentiment(context.Background(), "text"); got != LabelNegative {
		t.Errorf("Expected fresh result after transient failure, got %v", got)
	}
	if model.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", model.calls)
	}
}

func TestSentimentTruncatesLongText(t *testing.T) {
	model := &fakeModel{reply: "Trung lập"}
	a := NewAnalyzer(model)

	long := strings.Repeat("z", 5000)
	a.Sentiment(context.Background(), long)

	if strings.Count(model.last, "z") != sentimentMaxChars {
		t.Errorf("Expected prompt to carry %d runes of text, got %d", sentimentMaxChars, strings.Count(model.last, "z"))
	}
}

func TestInsightSkipsThinContent(t *testing.T) {
	model := &fakeModel{reply: "nhận định"}
	a := NewAnalyzer(model)

	if got := a.Insight(context.Background(), "ngắn", "SSI"); got != "" {
		t.Errorf("Expected empty insight for thin content, got %q", got)
	}
	if model.calls != 0 {
		t.Errorf("Expected no model call for thin content, got %d", model.calls)
	}
}

func TestInsightSentinelMapsToEmpty(t *testing.T) {
	model := &fakeModel{reply: "Không đủ thông tin để phân tích."}
	a := NewAnalyzer(model)

	text := strings.Repeat("nội dung bài viết ", 20)
	if got := a.Insight(context.Background(), text, "SSI"); got != "" {
		t.Errorf("Expected empty insight for sentinel reply, got %q", got)
	}
}

func TestInsightCachedPerTicker(t *testing.T) {
	model := &fakeModel{reply: "SSI hưởng lợi từ thanh khoản tăng"}
	a := NewAnalyzer(model)

	text := strings.Repeat("nội dung bài viết ", 20)
	a.Insight(context.Background(), text, "SSI")
	a.Insight(context.Background(), text, "SSI")
	a.Insight(context.Background(), text, "VNM")

	if model.calls != 2 {
		t.Errorf("Expected 2 calls (one per ticker), got %d", model.calls)
	}
}

func TestRecommendationMinLength(t *testing.T) {
	model := &fakeModel{reply: "MUA"}
	a := NewAnalyzer(model)

	short := strings.Repeat("a", recommendationMinChars-1)
	if got := a.Recommendation(context.Background(), short, "SSI"); got != "" {
		t.Errorf("Expected empty recommendation below minimum length, got %q", got)
	}

	long := strings.Repeat("a", recommendationMinChars)
	if got := a.Recommendation(context.Background(), long, "SSI"); got != "MUA" {
		t.Errorf("Expected recommendation at minimum length, got %q", got)
	}
}

func TestKeyMetricsSentinel(t *testing.T) {
	model := &fakeModel{reply: "Không tìm thấy chỉ số tài chính."}
	a := NewAnalyzer(model)

	text := strings.Repeat("a", keyMetricsMinChars)
	if got := a.KeyMetrics(context.Background(), text, "SSI"); got != "" {
		t.Errorf("Expected empty metrics for sentinel reply, got %q", got)
	}
}

func TestSummarizeFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	a := NewAnalyzer(model)

	if got := a.Summarize(context.Background(), "một tiêu đề dài"); got != cannotSummarize {
		t.Errorf("Expected %q on failure, got %q", cannotSummarize, got)
	}
}

func TestSummarizeInsightsJoinsInput(t *testing.T) {
	model := &fakeModel{reply: "Tóm tắt trong ngày"}
	a := NewAnalyzer(model)

	got := a.SummarizeInsights(context.Background(), "SSI", []string{"một", "hai"})
	if got != "Tóm tắt trong ngày" {
		t.Errorf("Expected summary text, got %q", got)
	}
	if !strings.Contains(model.last, "một\nhai") {
		t.Error("Expected insights joined by newline in prompt")
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	s := "ắằẳẵặ"
	got := truncate(s, 3)
	if got != "ắằẳ" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
	if truncate("abc", 10) != "abc" {
		t.Error("Expected short strings unchanged")
	}
}
