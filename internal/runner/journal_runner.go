package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/shouni/journal-manga-kit/internal/config"
	"github.com/shouni/journal-manga-kit/pkg/domain"
	"github.com/shouni/journal-manga-kit/pkg/pipeline"
	"github.com/shouni/journal-manga-kit/pkg/render"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// JournalRunner はジャーナル1件を絵物語へ変換する一連の処理のインターフェースなのだ。
type JournalRunner interface {
	Run(ctx context.Context) (*domain.PipelineResult, error)
}

// DefaultJournalRunner は pkg/pipeline の Orchestrator を利用した標準実装です。
type DefaultJournalRunner struct {
	options      config.GenerateOptions
	orchestrator *pipeline.Orchestrator
	reader       remoteio.InputReader
	writer       remoteio.OutputWriter
}

// NewDefaultJournalRunner は DefaultJournalRunner の新しいインスタンスを生成して返すのだ。
func NewDefaultJournalRunner(
	options config.GenerateOptions,
	orch *pipeline.Orchestrator,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
) *DefaultJournalRunner {
	return &DefaultJournalRunner{
		options:      options,
		orchestrator: orch,
		reader:       reader,
		writer:       writer,
	}
}

// Run は、ジャーナルの読み込み、パイプライン実行、実行記録の保存までを一気に行うのだ。
func (jr *DefaultJournalRunner) Run(ctx context.Context) (*domain.PipelineResult, error) {
	text, err := jr.readJournalText(ctx)
	if err != nil {
		return nil, fmt.Errorf("ジャーナルの読み込みに失敗したのだ: %w", err)
	}

	opts := pipeline.Options{
		EntryID: jr.options.EntryID,
		UserID:  jr.options.UserID,
		Render: render.Options{
			Style:          jr.options.Style,
			Size:           jr.options.Size,
			Quality:        jr.options.Quality,
			NegativePrompt: jr.options.NegativePrompt,
		},
		PanelsPerPage: jr.options.PanelsPerPage,
	}

	result, err := jr.orchestrator.Process(ctx, text, opts)
	if err != nil {
		return nil, err
	}

	if err := jr.saveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("実行記録の保存に失敗したのだ: %w", err)
	}

	return result, nil
}

// readJournalText は設定されたパスからジャーナル本文を読み込むのだ（GCS等も対応！）。
func (jr *DefaultJournalRunner) readJournalText(ctx context.Context) (string, error) {
	rc, err := jr.reader.Open(ctx, jr.options.JournalFile)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// saveResult は実行記録をJSONとして出力先へ書き出すのだ。
// 画像はすでに保存済みなので、この記録はURLと物語構成の索引になる。
func (jr *DefaultJournalRunner) saveResult(ctx context.Context, result *domain.PipelineResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	outputPath := path.Join(jr.options.OutputDir, result.RunID+".json")
	if err := jr.writer.Write(ctx, outputPath, bytes.NewReader(data), "application/json"); err != nil {
		return err
	}

	slog.Info("実行記録を保存したのだ", "path", outputPath, "pages", len(result.Pages))
	return nil
}
