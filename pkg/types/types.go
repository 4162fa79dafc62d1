package types

import "time"

// Entry は、ジャーナルの1記事から抽出された結果を保持します。
// Extractor が生成し、永続化処理が読み取るだけの値型です。
type Entry struct {
	Title          string    // 記事タイトル (非エンコード)
	Content        string    // 本文のHTMLフラグメント
	Updated        time.Time // 更新日時 (UTCオフセットは破棄済み)
	PredecessorURL string    // 1つ前の記事へのリンク。空ならチェーンの終端
}

// HasPredecessor は、前の記事へのリンクが存在するかどうかを返します。
func (e Entry) HasPredecessor() bool {
	return e.PredecessorURL != ""
}

// StepResult は、クロールループ1回分の結果、またはその処理中に発生したエラーを保持します。
type StepResult struct {
	URL   string // 処理対象のURL
	Entry Entry  // 抽出された記事
	Path  string // 書き出したファイルのパス
	Next  string // 次に訪問するURL (解決済み)。空なら終端
	Err   error  // 処理中に発生したエラー
}

// Done は、チェーンの終端に正常に到達したかどうかを返します。
func (r StepResult) Done() bool {
	return r.Err == nil && r.Next == ""
}
