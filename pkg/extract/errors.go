package extract

import (
	"errors"
	"fmt"
)

// Field は、抽出対象のフィールド名です。
type Field string

const (
	FieldTitle       Field = "title"
	FieldTimestamp   Field = "timestamp"
	FieldContent     Field = "content"
	FieldPredecessor Field = "predecessor"
)

var (
	// ErrMissingField は、必須フィールドの要素がページ内に見つからないことを示します。
	ErrMissingField = errors.New("必須フィールドが見つかりません")
	// ErrMalformedTimestamp は、タイムスタンプの書式が想定と異なることを示します。
	ErrMalformedTimestamp = errors.New("タイムスタンプの書式が不正です")
	// ErrMalformedLink は、前の記事へのリンクがURLとして解釈できないことを示します。
	ErrMalformedLink = errors.New("リンクの書式が不正です")
)

// ExtractionError は、どのフィールドの抽出に失敗したかを保持するエラーです。
type ExtractionError struct {
	Field Field
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("フィールド %q の抽出に失敗しました: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FieldOf は、err が ExtractionError を含む場合にそのフィールド名を返します。
func FieldOf(err error) (Field, bool) {
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.Field, true
	}
	return "", false
}

func missing(field Field) error {
	return &ExtractionError{Field: field, Err: ErrMissingField}
}
