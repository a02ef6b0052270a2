package cmd

import (
	"fmt"

	"github.com/shouni/journal-manga-kit/internal/prompt"
	"github.com/shouni/journal-manga-kit/pkg/promptstore"

	"github.com/spf13/cobra"
)

// templateCmd は、プロンプトテンプレートの閲覧系コマンドをまとめるのだ。
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "プロンプトテンプレートを閲覧するのだ。",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "登録されているテンプレート名を一覧するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := seededStore()
		if err != nil {
			return err
		}
		for _, name := range store.Names() {
			tpl, err := store.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tv%d\t%s\n", tpl.Name, tpl.Version, tpl.Description)
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "テンプレートの本文と変数を表示するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := seededStore()
		if err != nil {
			return err
		}
		tpl, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("テンプレート '%s' の取得に失敗したのだ: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s (v%d)\n", tpl.Name, tpl.Version)
		fmt.Fprintf(out, "variables: %v\n\n", tpl.Variables)
		fmt.Fprintln(out, tpl.TemplateText)
		return nil
	},
}

var templateHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "テンプレートの変更履歴を新しい順に表示するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := seededStore()
		if err != nil {
			return err
		}
		tpl, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("テンプレート '%s' の取得に失敗したのだ: %w", args[0], err)
		}

		changes := store.History(tpl.ID)
		if len(changes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "変更履歴はまだないのだ。")
			return nil
		}
		for _, ch := range changes {
			fmt.Fprintf(cmd.OutOrStdout(), "v%d -> v%d\t%s\t%s\n",
				ch.OldVersion, ch.NewVersion, ch.Timestamp.Format("2006-01-02 15:04:05"), ch.Author)
			for _, fc := range ch.ChangedFields {
				fmt.Fprintf(cmd.OutOrStdout(), "\t%s が変更されたのだ\n", fc.Field)
			}
		}
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateHistoryCmd)
}

// seededStore は組み込みテンプレートを投入済みのストアを返すのだ。
func seededStore() (*promptstore.Store, error) {
	store := promptstore.NewStore()
	if err := prompt.Seed(store); err != nil {
		return nil, err
	}
	return store, nil
}
