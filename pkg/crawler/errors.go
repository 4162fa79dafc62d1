package crawler

import (
	"errors"
	"fmt"
)

// ErrCycleDetected は、リンクのチェーン内で同じURLを再訪しようとしたことを示します。
var ErrCycleDetected = errors.New("リンクの循環を検出しました")

// FetchError は、ページの取得 (成功以外のHTTPステータスを含む) に失敗したことを示すエラーです。
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("ページの取得に失敗しました (URL: %s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
