package domain

import "fmt"

// Emotion は感情分析で検出された単一の感情と、その強度・確信度を保持します。
type Emotion struct {
	Name       string  `json:"name"`
	Intensity  float64 `json:"intensity"`  // 0.0〜1.0
	Confidence float64 `json:"confidence"` // 0.0〜1.0
}

// EmotionProfile はジャーナル1本から導出される感情プロファイルです。
// パイプライン実行ごとに一度だけ生成され、生成後は変更しません。
type EmotionProfile struct {
	Emotions        []Emotion `json:"emotions"`
	DominantEmotion string    `json:"dominant_emotion"`
	SentimentScore  float64   `json:"sentiment_score"` // -1.0〜1.0
}

// Validate はプロファイルがモデル出力として成立しているかを確認するのだ。
// ゼロ値で埋められた「分析できていないプロファイル」を下流に流さないための関門なのだ。
func (p EmotionProfile) Validate() error {
	if len(p.Emotions) == 0 {
		return fmt.Errorf("emotions is empty")
	}
	if p.DominantEmotion == "" {
		return fmt.Errorf("dominant_emotion is empty")
	}
	if p.SentimentScore < -1.0 || p.SentimentScore > 1.0 {
		return fmt.Errorf("sentiment_score %.3f is out of range [-1, 1]", p.SentimentScore)
	}
	for i, e := range p.Emotions {
		if e.Name == "" {
			return fmt.Errorf("emotions[%d].name is empty", i)
		}
		if e.Intensity < 0 || e.Intensity > 1 {
			return fmt.Errorf("emotions[%d].intensity %.3f is out of range [0, 1]", i, e.Intensity)
		}
		if e.Confidence < 0 || e.Confidence > 1 {
			return fmt.Errorf("emotions[%d].confidence %.3f is out of range [0, 1]", i, e.Confidence)
		}
	}
	return nil
}

// String はログ出力向けの短い表現を返します。
func (p EmotionProfile) String() string {
	return fmt.Sprintf("%s (sentiment=%.2f, emotions=%d)", p.DominantEmotion, p.SentimentScore, len(p.Emotions))
}
