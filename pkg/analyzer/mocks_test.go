package analyzer

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
)

// mockAIClient は gemini.GenerativeModel のテスト用モックなのだ。
// 使わないメソッドはインターフェースの埋め込みで解決する。
// GenerateContent の引数順（model が先、prompt が後）は実インターフェースと揃える。
type mockAIClient struct {
	gemini.GenerativeModel
	generateFunc func(ctx context.Context, model string, prompt string) (*gemini.Response, error)
	calls        int
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, prompt)
	}
	return &gemini.Response{}, nil
}

// textResponse は本文だけを持つ応答を組み立てるヘルパーなのだ。
func textResponse(text string) *gemini.Response {
	return &gemini.Response{Text: text}
}
