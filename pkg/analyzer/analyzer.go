package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shouni/go-gemini-client/pkg/gemini"

	"github.com/shouni/journal-manga-kit/pkg/domain"
	"github.com/shouni/journal-manga-kit/pkg/promptstore"
)

// ストアから引くテンプレートの論理名なのだ。管理UI側もこの名前で運用する。
const (
	TemplateJournalAnalysis = "journalAnalysis"
	TemplateStoryGeneration = "storyGeneration"

	VarJournalText    = "journal_text"
	VarEmotionProfile = "emotion_profile"
)

const (
	defaultCallTimeout = 60 * time.Second
	defaultMaxRetries  = 2
)

// TemplateSource はアクティブなプロンプトテンプレートの読み取り窓口です。
type TemplateSource interface {
	Get(name string) (domain.PromptTemplate, error)
}

// Analyzer はジャーナル本文から感情プロファイルと物語構成を導出します。
// 2つの操作はどちらも入力だけで決まる純粋な変換で、呼び出し間に状態を持ちません。
// Gemini クライアントは構築時に注入します（遅延生成のシングルトンは持たないのだ）。
type Analyzer struct {
	aiClient    gemini.GenerativeModel
	templates   TemplateSource
	model       string
	callTimeout time.Duration
	maxRetries  uint64
}

// Option は Analyzer の挙動を調整します。
type Option func(*Analyzer)

// WithCallTimeout はモデル呼び出し1回あたりのデッドラインを差し替えます。
func WithCallTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.callTimeout = d }
}

// WithMaxRetries はステージ内部での再試行回数を差し替えます（0で再試行なし）。
func WithMaxRetries(n uint64) Option {
	return func(a *Analyzer) { a.maxRetries = n }
}

// New は Analyzer を生成します。依存が欠けている場合はエラーを返します。
func New(aiClient gemini.GenerativeModel, templates TemplateSource, model string, opts ...Option) (*Analyzer, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("templates is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	a := &Analyzer{
		aiClient:    aiClient,
		templates:   templates,
		model:       model,
		callTimeout: defaultCallTimeout,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AnalyzeEmotions はジャーナル本文を感情プロファイルへ変換します。
// モデル応答が期待する形に解釈できない場合は AnalysisError で失敗します。
func (a *Analyzer) AnalyzeEmotions(ctx context.Context, text string) (domain.EmotionProfile, error) {
	prompt, err := a.buildPrompt(TemplateJournalAnalysis, map[string]string{
		VarJournalText: text,
	})
	if err != nil {
		return domain.EmotionProfile{}, &AnalysisError{Reason: "プロンプトの構築に失敗", Cause: err}
	}

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return domain.EmotionProfile{}, &AnalysisError{Reason: "モデル呼び出しに失敗", Cause: err}
	}

	profile, err := parseEmotionProfile(raw)
	if err != nil {
		return domain.EmotionProfile{}, &AnalysisError{Reason: "応答の解釈に失敗", Cause: err}
	}

	slog.Info("感情分析が完了したのだ", "dominant", profile.DominantEmotion,
		"sentiment", profile.SentimentScore, "emotions", len(profile.Emotions))
	return profile, nil
}

// GenerateStory は本文とプロファイルから 3〜5 シーンの物語構成を生成します。
// シーン数が範囲外の場合は切り詰めず GenerationError として表面化させます。
func (a *Analyzer) GenerateStory(ctx context.Context, text string, profile domain.EmotionProfile) (domain.StoryArc, error) {
	serialized, err := json.Marshal(profile)
	if err != nil {
		return domain.StoryArc{}, &GenerationError{Reason: "プロファイルの直列化に失敗", Cause: err}
	}

	prompt, err := a.buildPrompt(TemplateStoryGeneration, map[string]string{
		VarJournalText:    text,
		VarEmotionProfile: string(serialized),
	})
	if err != nil {
		return domain.StoryArc{}, &GenerationError{Reason: "プロンプトの構築に失敗", Cause: err}
	}

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return domain.StoryArc{}, &GenerationError{Reason: "モデル呼び出しに失敗", Cause: err}
	}

	arc, err := parseStoryArc(raw)
	if err != nil {
		return domain.StoryArc{}, &GenerationError{Reason: "応答の解釈に失敗", Cause: err}
	}

	slog.Info("物語構成が完成したのだ", "title", arc.Title, "scenes", len(arc.Scenes))
	return arc, nil
}

// buildPrompt はストアのアクティブ版テンプレートを展開します。
func (a *Analyzer) buildPrompt(name string, values map[string]string) (string, error) {
	tpl, err := a.templates.Get(name)
	if err != nil {
		return "", fmt.Errorf("テンプレート '%s' の取得に失敗しました: %w", name, err)
	}
	return promptstore.Render(tpl, values)
}

// generate はデッドライン付きでモデルを呼び、ステージ内部の小さな再試行を行います。
// この再試行は呼び出し元からは見えず、使い切った時点でステージの失敗になります。
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	var text string

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
		defer cancel()

		resp, err := a.aiClient.GenerateContent(callCtx, a.model, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		text = resp.Text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return text, nil
}
