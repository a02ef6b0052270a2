package promptstore

import (
	"regexp"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// variableTokenRegex は templateText 中の {{name}} スロットを抽出します。
var variableTokenRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Store は名前付き・バージョン付きテンプレートと追記専用の変更履歴を所有します。
// パイプライン内で唯一の共有可変リソースであり、すべての公開メソッドは
// 内部ミューテックスで直列化されます。
type Store struct {
	mu        sync.RWMutex
	byName    map[string][]domain.PromptTemplate // バージョン昇順の追記専用履歴
	changes   map[string][]domain.PromptChange   // TemplateID -> 発生順の変更レコード
	idToName  map[string]string
	clock     func() time.Time
	idFactory func() string
}

// Option は Store の生成時パラメータを差し替えます（テストでの時刻固定用）。
type Option func(*Store)

// WithClock は LastModified / Timestamp に使う時刻源を差し替えます。
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// NewStore は空のテンプレートストアを生成します。
func NewStore(opts ...Option) *Store {
	s := &Store{
		byName:    make(map[string][]domain.PromptTemplate),
		changes:   make(map[string][]domain.PromptChange),
		idToName:  make(map[string]string),
		clock:     time.Now,
		idFactory: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get は名前に対応するアクティブなテンプレートを返します。
// アクティブ版が存在しない場合は ErrNotFound を返すのだ。
func (s *Store) Get(name string) (domain.PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.byName[name]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].IsActive {
			return versions[i].Clone(), nil
		}
	}
	return domain.PromptTemplate{}, ErrNotFound
}

// Has は名前に対応するアクティブなテンプレートの有無だけを返します。
func (s *Store) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Names は登録済みテンプレート名を辞書順で返します。
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create は version=1, isActive=true の新規テンプレートを保存します。
// 本文と変数宣言の不整合は ValidationError として保存時点で拒否します。
func (s *Store) Create(name, description, templateText string, variables []string, author string) (domain.PromptTemplate, error) {
	if err := validateTemplate(name, templateText, variables); err != nil {
		return domain.PromptTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.byName[name]) > 0 {
		return domain.PromptTemplate{}, &ValidationError{
			Name:   name,
			Reason: "同名のテンプレートが既に存在します。Update を使ってください",
		}
	}

	tpl := domain.PromptTemplate{
		ID:           s.idFactory(),
		Name:         name,
		Description:  description,
		TemplateText: templateText,
		Variables:    slices.Clone(variables),
		Version:      1,
		IsActive:     true,
		CreatedBy:    author,
		LastModified: s.clock(),
	}
	s.byName[name] = append(s.byName[name], tpl)
	s.idToName[tpl.ID] = name

	return tpl.Clone(), nil
}

// UpdateFields は Update に渡す部分更新の指定です。nil のフィールドは据え置きです。
// ExpectedVersion が 0 より大きい場合は楽観ロックとして検査され、
// 現行バージョンと食い違うと ConflictError になります。
type UpdateFields struct {
	Description     *string
	TemplateText    *string
	Variables       *[]string
	ExpectedVersion int
}

// Update は現行のアクティブ版との差分を計算し、PromptChange を追記したうえで
// バージョンを1つ進めた新しいアクティブ版を積みます。過去のバージョンには触れません。
// 全フィールドが現行と一致する更新は現行版をそのまま返し、履歴には何も残しません。
func (s *Store) Update(id string, fields UpdateFields, author string) (domain.PromptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.idToName[id]
	if !ok {
		return domain.PromptTemplate{}, ErrNotFound
	}

	versions := s.byName[name]
	current := versions[len(versions)-1]

	if fields.ExpectedVersion > 0 && fields.ExpectedVersion != current.Version {
		return domain.PromptTemplate{}, &ConflictError{
			Name:            name,
			ExpectedVersion: fields.ExpectedVersion,
			CurrentVersion:  current.Version,
		}
	}

	next := current.Clone()
	next.Version = current.Version + 1
	next.IsActive = true
	next.CreatedBy = author
	next.LastModified = s.clock()

	var diffs []domain.FieldChange
	if fields.Description != nil && *fields.Description != current.Description {
		diffs = append(diffs, domain.FieldChange{Field: "description", OldValue: current.Description, NewValue: *fields.Description})
		next.Description = *fields.Description
	}
	if fields.TemplateText != nil && *fields.TemplateText != current.TemplateText {
		diffs = append(diffs, domain.FieldChange{Field: "templateText", OldValue: current.TemplateText, NewValue: *fields.TemplateText})
		next.TemplateText = *fields.TemplateText
	}
	if fields.Variables != nil && !slices.Equal(*fields.Variables, current.Variables) {
		diffs = append(diffs, domain.FieldChange{
			Field:    "variables",
			OldValue: joinVariables(current.Variables),
			NewValue: joinVariables(*fields.Variables),
		})
		next.Variables = slices.Clone(*fields.Variables)
	}

	// 差分ゼロの更新は何も積まない。バージョンも履歴もそのままなのだ。
	if len(diffs) == 0 {
		return current.Clone(), nil
	}

	// 更新後の姿で再検証。不整合なら履歴には何も残さないのだ。
	if err := validateTemplate(name, next.TemplateText, next.Variables); err != nil {
		return domain.PromptTemplate{}, err
	}

	// 旧版は不活性化した複製で置き換え、履歴自体は追記のみ。
	deactivated := current.Clone()
	deactivated.IsActive = false
	versions[len(versions)-1] = deactivated
	s.byName[name] = append(versions, next)

	s.changes[id] = append(s.changes[id], domain.PromptChange{
		TemplateID:    id,
		OldVersion:    current.Version,
		NewVersion:    next.Version,
		ChangedFields: diffs,
		Author:        author,
		Timestamp:     next.LastModified,
	})

	return next.Clone(), nil
}

// History はテンプレートの変更レコードを新しい順で返します。
func (s *Store) History(templateID string) []domain.PromptChange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.changes[templateID]
	out := make([]domain.PromptChange, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec
	}
	return out
}

// validateTemplate は本文中の変数と宣言済み変数の完全一致を検査します。
func validateTemplate(name, templateText string, variables []string) error {
	referenced := make(map[string]struct{})
	for _, match := range variableTokenRegex.FindAllStringSubmatch(templateText, -1) {
		referenced[match[1]] = struct{}{}
	}

	declared := make(map[string]struct{}, len(variables))
	for _, v := range variables {
		declared[v] = struct{}{}
	}

	for ref := range referenced {
		if _, ok := declared[ref]; !ok {
			return &ValidationError{Name: name, Reason: "未宣言の変数 '" + ref + "' が本文で参照されています"}
		}
	}
	for decl := range declared {
		if _, ok := referenced[decl]; !ok {
			return &ValidationError{Name: name, Reason: "宣言済みの変数 '" + decl + "' が本文で使われていません"}
		}
	}
	return nil
}

func joinVariables(vars []string) string {
	out := ""
	for i, v := range vars {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
