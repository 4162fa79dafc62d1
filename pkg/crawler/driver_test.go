package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shouni/lj-archive/pkg/archive"
	"github.com/shouni/lj-archive/pkg/crawler"
	"github.com/shouni/lj-archive/pkg/extract"
	"github.com/shouni/lj-archive/pkg/types"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はテスト用の extract.Fetcher インターフェースの実装です。
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

// failingStore は常に保存に失敗する EntryStore です。
type failingStore struct{ err error }

func (s failingStore) EnsureDir() error { return nil }
func (s failingStore) Save(types.Entry) (string, error) { return "", s.err }

func entryPage(day int, title, prev string) []byte {
	link := ""
	if prev != "" {
		link = fmt.Sprintf(`<span class="entry-linkbar-inner"><a href="%s"><img alt="Previous Entry"></a></span>`, prev)
	}
	return []byte(fmt.Sprintf(`<html><body>%s
<abbr class="updated" title="2013-10-%02dT11:41:00+03:00"></abbr>
<dl><dt class="entry-title">%s</dt></dl>
<div class="entry-content"><p>Entry %s</p></div>
</body></html>`, link, day, title, title))
}

func chainURL(i int) string {
	return fmt.Sprintf("https://user.livejournal.com/%d.html", i)
}

// newChain は、i 番目のページが i+1 番目を前の記事として参照する N ページのチェーンを登録します。
func newChain(n int) *MockFetcher {
	fetcher := new(MockFetcher)
	for i := 1; i <= n; i++ {
		prev := ""
		if i < n {
			prev = chainURL(i + 1)
		}
		fetcher.On("FetchBytes", mock.Anything, chainURL(i)).Return(entryPage(i, fmt.Sprintf("Post %d", i), prev), nil)
	}
	return fetcher
}

func newDriver(t *testing.T, fetcher extract.Fetcher, store crawler.EntryStore, cfg crawler.Config) *crawler.Driver {
	t.Helper()
	extractor, err := extract.NewExtractor(extract.LiveJournal{}, nil)
	require.NoError(t, err)
	driver, err := crawler.NewDriver(fetcher, extractor, store, cfg)
	require.NoError(t, err)
	return driver
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewDriver(t *testing.T) {
	extractor, err := extract.NewExtractor(extract.LiveJournal{}, nil)
	require.NoError(t, err)
	store := archive.NewStore(afero.NewMemMapFs(), "html", nil)

	_, err = crawler.NewDriver(nil, extractor, store, crawler.Config{})
	assert.ErrorContains(t, err, "Fetcher cannot be nil")
	_, err = crawler.NewDriver(new(MockFetcher), nil, store, crawler.Config{})
	assert.ErrorContains(t, err, "Extractor cannot be nil")
	_, err = crawler.NewDriver(new(MockFetcher), extractor, nil, crawler.Config{})
	assert.ErrorContains(t, err, "Store cannot be nil")
}

func TestRun_ChainTermination(t *testing.T) {
	const n = 5
	fetcher := newChain(n)
	fs := afero.NewMemMapFs()
	driver := newDriver(t, fetcher, archive.NewStore(fs, "html", nil), crawler.Config{})

	summary, err := driver.Run(context.Background(), chainURL(1))
	require.NoError(t, err)

	assert.Equal(t, n, summary.Fetched)
	assert.Len(t, summary.Files, n)
	assert.Equal(t, chainURL(n), summary.LastURL)
	fetcher.AssertNumberOfCalls(t, "FetchBytes", n)

	infos, err := afero.ReadDir(fs, "html")
	require.NoError(t, err)
	assert.Len(t, infos, n)
	// 取得順は新しい記事から古い記事へ
	assert.Equal(t, "html/2013-10-01-Post+1.html", summary.Files[0])
	assert.Equal(t, "html/2013-10-05-Post+5.html", summary.Files[n-1])
}

func TestRun_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := archive.NewStore(fs, "html", nil)

	first, err := newDriver(t, newChain(3), store, crawler.Config{}).Run(context.Background(), chainURL(1))
	require.NoError(t, err)
	snapshot := make(map[string][]byte)
	for _, path := range first.Files {
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		snapshot[path] = data
	}

	second, err := newDriver(t, newChain(3), store, crawler.Config{}).Run(context.Background(), chainURL(1))
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
	for _, path := range second.Files {
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, snapshot[path], data, "再実行でファイル内容が変わりました: %s", path)
	}
}

func TestRun_RelativePredecessorLink(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchBytes", mock.Anything, "https://user.livejournal.com/2.html").
		Return(entryPage(2, "Second", "/1.html"), nil)
	fetcher.On("FetchBytes", mock.Anything, "https://user.livejournal.com/1.html").
		Return(entryPage(1, "First", ""), nil)

	driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})
	summary, err := driver.Run(context.Background(), "https://user.livejournal.com/2.html")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	fetcher.AssertExpectations(t)
}

func TestRun_CycleDetected(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(entryPage(1, "A", chainURL(2)), nil)
	fetcher.On("FetchBytes", mock.Anything, chainURL(2)).Return(entryPage(2, "B", chainURL(1)), nil)

	driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})
	summary, err := driver.Run(context.Background(), chainURL(1))

	assert.ErrorIs(t, err, crawler.ErrCycleDetected)
	assert.Equal(t, 2, summary.Fetched)
	assert.Len(t, summary.Files, 2)
	fetcher.AssertNumberOfCalls(t, "FetchBytes", 2)
}

func TestRun_CycleDetectedAcrossURLForms(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(entryPage(1, "A", chainURL(2)), nil)
	// スキーム・ホストの大文字小文字・フラグメントだけが異なる同じ記事へのリンク
	fetcher.On("FetchBytes", mock.Anything, chainURL(2)).
		Return(entryPage(2, "B", "HTTP://User.LiveJournal.com/1.html#comments"), nil)

	driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})
	summary, err := driver.Run(context.Background(), chainURL(1))

	assert.ErrorIs(t, err, crawler.ErrCycleDetected)
	assert.Equal(t, 2, summary.Fetched)
	fetcher.AssertNumberOfCalls(t, "FetchBytes", 2)
}

func TestRun_AllowRevisitFollowsCycle(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(entryPage(1, "A", chainURL(1)), nil).Once()
	fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(nil, errors.New("stop")).Once()

	driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{AllowRevisit: true})
	summary, err := driver.Run(context.Background(), chainURL(1))

	var fetchErr *crawler.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.NotErrorIs(t, err, crawler.ErrCycleDetected)
	assert.Equal(t, 2, summary.Fetched)
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("fetch_error_halts_run", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(entryPage(1, "A", chainURL(2)), nil)
		fetcher.On("FetchBytes", mock.Anything, chainURL(2)).Return(nil, errors.New("404 Not Found"))

		fs := afero.NewMemMapFs()
		driver := newDriver(t, fetcher, archive.NewStore(fs, "html", nil), crawler.Config{})
		summary, err := driver.Run(context.Background(), chainURL(1))

		var fetchErr *crawler.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, chainURL(2), fetchErr.URL)
		// それまでに書き出したファイルは残る
		assert.Len(t, summary.Files, 1)
		exists, _ := afero.Exists(fs, summary.Files[0])
		assert.True(t, exists)
	})

	t.Run("extraction_error_writes_nothing_for_that_page", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("FetchBytes", mock.Anything, chainURL(1)).
			Return([]byte(`<html><body><abbr class="updated" title="2013-10-08T11:41:00+03:00"></abbr></body></html>`), nil)

		fs := afero.NewMemMapFs()
		driver := newDriver(t, fetcher, archive.NewStore(fs, "html", nil), crawler.Config{})
		summary, err := driver.Run(context.Background(), chainURL(1))

		field, ok := extract.FieldOf(err)
		require.True(t, ok)
		assert.Equal(t, extract.FieldTitle, field)
		assert.Empty(t, summary.Files)

		infos, err := afero.ReadDir(fs, "html")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("store_error_halts_run", func(t *testing.T) {
		storeErr := &archive.IOError{Op: "write", Path: "html/x.html", Err: errors.New("disk full")}
		driver := newDriver(t, newChain(2), failingStore{err: storeErr}, crawler.Config{})

		summary, err := driver.Run(context.Background(), chainURL(1))
		var ioErr *archive.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, 1, summary.Fetched)
	})

	t.Run("canceled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := newChain(2)
		driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})
		_, err := driver.Run(ctx, chainURL(1))

		assert.ErrorIs(t, err, context.Canceled)
		fetcher.AssertNotCalled(t, "FetchBytes", mock.Anything, mock.Anything)
	})
}

func TestStep(t *testing.T) {
	t.Run("success_with_next", func(t *testing.T) {
		driver := newDriver(t, newChain(2), archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})

		res := driver.Step(context.Background(), chainURL(1))
		require.NoError(t, res.Err)
		assert.Equal(t, chainURL(2), res.Next)
		assert.False(t, res.Done())
		assert.Equal(t, "Post 1", res.Entry.Title)
		assert.Equal(t, "html/2013-10-01-Post+1.html", res.Path)
	})

	t.Run("last_page_is_done", func(t *testing.T) {
		driver := newDriver(t, newChain(1), archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})

		res := driver.Step(context.Background(), chainURL(1))
		require.NoError(t, res.Err)
		assert.True(t, res.Done())
	})

	t.Run("malformed_predecessor_link", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("FetchBytes", mock.Anything, chainURL(1)).Return(entryPage(1, "A", "http://[::1"), nil)
		driver := newDriver(t, fetcher, archive.NewStore(afero.NewMemMapFs(), "html", nil), crawler.Config{})

		res := driver.Step(context.Background(), chainURL(1))
		assert.ErrorIs(t, res.Err, extract.ErrMalformedLink)
		field, _ := extract.FieldOf(res.Err)
		assert.Equal(t, extract.FieldPredecessor, field)
	})
}
