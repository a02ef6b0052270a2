package promptstore

import (
	"errors"
	"testing"
)

func TestRender(t *testing.T) {
	s := newTestStore()

	t.Run("変数が値で置換されること", func(t *testing.T) {
		tpl, err := s.Create("greet", "", "Hi {{name}}", []string{"name"}, "admin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := Render(tpl, map[string]string{"name": "Ana"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Hi Ana" {
			t.Errorf("expected 'Hi Ana', got %q", got)
		}
	})

	t.Run("同じ変数の複数回出現がすべて置換されること", func(t *testing.T) {
		tpl, _ := s.Create("echo", "", "{{word}} {{word}}!", []string{"word"}, "admin")

		got, err := Render(tpl, map[string]string{"word": "go"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "go go!" {
			t.Errorf("expected 'go go!', got %q", got)
		}
	})

	t.Run("値が渡されない宣言済み変数は MissingVariable になること", func(t *testing.T) {
		tpl, _ := s.Create("pair", "", "{{a}} / {{b}}", []string{"a", "b"}, "admin")

		_, err := Render(tpl, map[string]string{"a": "1"})

		var merr *MissingVariableError
		if !errors.As(err, &merr) {
			t.Fatalf("expected MissingVariableError, got %v", err)
		}
		if merr.Variable != "b" {
			t.Errorf("expected missing variable 'b', got %q", merr.Variable)
		}
	})

	t.Run("余分な値は無視されること", func(t *testing.T) {
		tpl, _ := s.Create("solo", "", "only {{x}}", []string{"x"}, "admin")

		got, err := Render(tpl, map[string]string{"x": "this", "unused": "that"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "only this" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("値の埋め込みで持ち込まれたトークンは UnresolvedToken になること", func(t *testing.T) {
		tpl, _ := s.Create("inject", "", "say {{msg}}", []string{"msg"}, "admin")

		_, err := Render(tpl, map[string]string{"msg": "oops {{sneaky}}"})

		var uerr *UnresolvedTokenError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UnresolvedTokenError, got %v", err)
		}
	})
}
