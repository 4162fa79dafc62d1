package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/shouni/lj-archive/pkg/types"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// IOError は、出力先ディレクトリやファイルの操作に失敗したことを示すエラーです。
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ファイル操作 (%s) に失敗しました (パス: %s): %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ErrNotDirectory は、出力先のパスがディレクトリ以外のものであることを示します。
var ErrNotDirectory = errors.New("ディレクトリではありません")

// Store は、Entry を出力先ディレクトリに1記事1ファイルで書き出します。
type Store struct {
	fs          afero.Fs
	dir         string
	frontMatter []string
}

// NewStore は、新しい Store を生成します。
// frontMatter が nil の場合は DefaultFrontMatter を使用します。
func NewStore(fs afero.Fs, dir string, frontMatter []string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if frontMatter == nil {
		frontMatter = DefaultFrontMatter
	}
	return &Store{
		fs:          fs,
		dir:         dir,
		frontMatter: frontMatter,
	}
}

// EnsureDir は出力先ディレクトリが存在しなければ作成します。何度呼び出しても安全です。
func (s *Store) EnsureDir() error {
	info, err := s.fs.Stat(s.dir)
	if err == nil {
		if !info.IsDir() {
			return &IOError{Op: "mkdir", Path: s.dir, Err: ErrNotDirectory}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return &IOError{Op: "stat", Path: s.dir, Err: err}
	}

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return &IOError{Op: "mkdir", Path: s.dir, Err: err}
	}
	return nil
}

// Save は Entry をレンダリングして書き出し、書き出したファイルのパスを返します。
// 一時ファイルに書き込んでからリネームするため、途中でクラッシュしても
// 既に書き出した他のファイルが壊れることはありません。
func (s *Store) Save(entry types.Entry) (string, error) {
	path := filepath.Join(s.dir, FileName(entry))

	tmp, err := afero.TempFile(s.fs, s.dir, ".entry-*.tmp")
	if err != nil {
		return "", &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(Render(entry, s.frontMatter)); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", &IOError{Op: "close", Path: path, Err: err}
	}

	// TempFile は 0600 で作成されるため、通常のファイルと同じ権限に揃える
	if err := s.fs.Chmod(tmpName, filePerm); err != nil {
		s.fs.Remove(tmpName)
		return "", &IOError{Op: "chmod", Path: path, Err: err}
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return "", &IOError{Op: "rename", Path: path, Err: err}
	}
	return path, nil
}
