package domain

import "time"

// PromptTemplate は名前付き・バージョン付きのプロンプト雛形です。
// templateText 中の {{name}} が変数スロットで、Variables と完全に一致していなければなりません。
// 同名テンプレートのうち IsActive=true は常に1バージョンだけです。
type PromptTemplate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TemplateText string    `json:"template_text"`
	Variables    []string  `json:"variables"`
	Version      int       `json:"version"` // 単調増加
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by"`
	LastModified time.Time `json:"last_modified"`
}

// FieldChange はテンプレート更新時の1フィールド分の差分です。
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// PromptChange はテンプレート保存のたびに自動生成される不変の差分レコードです。
// 生成後に更新も削除もされない、追記専用の監査履歴なのだ。
type PromptChange struct {
	TemplateID    string        `json:"template_id"`
	OldVersion    int           `json:"old_version"`
	NewVersion    int           `json:"new_version"`
	ChangedFields []FieldChange `json:"changed_fields"`
	Author        string        `json:"author"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Clone はテンプレートの防御的コピーを返します。
// 内部に保持するバージョン履歴が呼び出し元から書き換えられるのを防ぐためのものです。
func (t PromptTemplate) Clone() PromptTemplate {
	copied := t
	if t.Variables != nil {
		copied.Variables = make([]string, len(t.Variables))
		copy(copied.Variables, t.Variables)
	}
	return copied
}
