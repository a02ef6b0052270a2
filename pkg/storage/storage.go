package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Uploader は生成物を永続ストレージへ保存し、公開URLを返す契約です。
// シーン画像とページ画像の両方がこの窓口を通ります。
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// RemoteUploader は go-remote-io の OutputWriter をストレージ契約に適合させます。
// 書き込み先は baseDir/key（ローカルパスでも gs:// でも可）で、
// 公開URLは publicBaseURL と key の結合で導出します。
type RemoteUploader struct {
	writer        remoteio.OutputWriter
	baseDir       string
	publicBaseURL string
}

// NewRemoteUploader は RemoteUploader を生成します。
func NewRemoteUploader(writer remoteio.OutputWriter, baseDir, publicBaseURL string) (*RemoteUploader, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir is required")
	}
	return &RemoteUploader{
		writer:        writer,
		baseDir:       strings.TrimSuffix(baseDir, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload はバイト列を書き込み、公開URLを返します。
func (u *RemoteUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	key = strings.TrimPrefix(key, "/")

	dest := u.baseDir + "/" + key
	if err := u.writer.Write(ctx, dest, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("'%s' への書き込みに失敗しました: %w", dest, err)
	}

	return u.PublicURL(key), nil
}

// PublicURL はオブジェクトキーから公開URLを導出します。
// publicBaseURL が未設定の場合は書き込み先パスをそのまま返します（ローカル実行向け）。
func (u *RemoteUploader) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if u.publicBaseURL == "" {
		return u.baseDir + "/" + key
	}

	// キーにスペース等が含まれてもURLとして壊れないようにエスケープする。
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return u.publicBaseURL + "/" + strings.Join(parts, "/")
}
