package promptstore

import (
	"strings"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// Render はテンプレート本文の {{name}} をすべて値で置換した文字列を返します。
// 宣言済み変数に値が渡されていなければ MissingVariable、
// 置換後に {{…}} トークンが残っていれば UnresolvedToken で失敗するのだ。
// 余分に渡された値は単に無視されます。
func Render(tpl domain.PromptTemplate, values map[string]string) (string, error) {
	for _, v := range tpl.Variables {
		if _, ok := values[v]; !ok {
			return "", &MissingVariableError{Name: tpl.Name, Variable: v}
		}
	}

	resolved := variableTokenRegex.ReplaceAllStringFunc(tpl.TemplateText, func(token string) string {
		name := variableTokenRegex.FindStringSubmatch(token)[1]
		if val, ok := values[name]; ok {
			return val
		}
		return token
	})

	// 値の埋め込みで新たなトークンが紛れ込むこともあるため、出力を最終検査する。
	if leftover := variableTokenRegex.FindString(resolved); leftover != "" {
		return "", &UnresolvedTokenError{Name: tpl.Name, Token: strings.TrimSpace(leftover)}
	}

	return resolved, nil
}
