package extract

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"
	"go.uber.org/zap"

	"github.com/shouni/lj-archive/pkg/markup"
	"github.com/shouni/lj-archive/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	// TimestampLayout は、UTCオフセットを取り除いた後のタイムスタンプの書式です。
	TimestampLayout = "2006-01-02T15:04:05"
	// utcOffsetLen は末尾の "+03:00" の長さです。
	utcOffsetLen = len("+03:00")
)

// Extractor は、Strategy を使って記事ページから Entry を抽出します。
type Extractor struct {
	strategy Strategy
	logger   *zap.Logger
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
// logger が nil の場合、ログは出力されません。
func NewExtractor(strategy Strategy, logger *zap.Logger) (*Extractor, error) {
	if strategy == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Strategy cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		strategy: strategy,
		logger:   logger,
	}, nil
}

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// Extract は、記事ページの生HTMLから Entry を抽出します。
// 必須フィールド (タイトル、タイムスタンプ、本文) のいずれかが欠けている場合は
// *ExtractionError を返し、部分的な Entry は返しません。
func (e *Extractor) Extract(page []byte) (types.Entry, error) {
	// 1. goquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return types.Entry{}, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	// 2. 前の記事へのリンク (存在しなければチェーンの終端)
	prev, _ := e.strategy.FindPredecessorLink(doc)
	e.logger.Debug("前の記事へのリンク", zap.String("predecessor", prev))

	// 3. タイムスタンプ
	raw, ok := e.strategy.FindTimestamp(doc)
	if !ok {
		return types.Entry{}, missing(FieldTimestamp)
	}
	updated, err := ParseTimestamp(raw)
	if err != nil {
		return types.Entry{}, err
	}
	e.logger.Debug("タイムスタンプ", zap.Time("updated", updated))

	// 4. タイトル
	title, ok := e.strategy.FindTitle(doc)
	title = textUtils.NormalizeText(title)
	if !ok || title == "" {
		return types.Entry{}, missing(FieldTitle)
	}
	e.logger.Debug("タイトル", zap.String("title", title))

	// 5. 本文 (テキストではなくマークアップを保持したまま再シリアライズ)
	container, ok := e.strategy.FindContent(doc)
	if !ok {
		return types.Entry{}, missing(FieldContent)
	}
	content, err := markup.Pretty(container.Nodes...)
	if err != nil {
		return types.Entry{}, &ExtractionError{Field: FieldContent, Err: err}
	}
	if content == "" {
		return types.Entry{}, missing(FieldContent)
	}
	e.logger.Debug("本文", zap.String("content", content))

	return types.Entry{
		Title:          title,
		Content:        content,
		Updated:        updated,
		PredecessorURL: prev,
	}, nil
}

// ParseTimestamp は "2013-10-08T11:41:00+03:00" 形式の文字列を解析します。
// 末尾6文字のUTCオフセットは信頼できないため破棄し、残りをUTCの時刻として扱います。
func ParseTimestamp(raw string) (time.Time, error) {
	if len(raw) <= utcOffsetLen {
		return time.Time{}, &ExtractionError{
			Field: FieldTimestamp,
			Err:   fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw),
		}
	}

	// time.Parse はレイアウトにない小数秒も受け付けるため、長さで厳密に判定する
	local := raw[:len(raw)-utcOffsetLen]
	if len(local) != len(TimestampLayout) {
		return time.Time{}, &ExtractionError{
			Field: FieldTimestamp,
			Err:   fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw),
		}
	}

	ts, err := time.Parse(TimestampLayout, local)
	if err != nil {
		return time.Time{}, &ExtractionError{
			Field: FieldTimestamp,
			Err:   fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, raw, err),
		}
	}
	return ts, nil
}
