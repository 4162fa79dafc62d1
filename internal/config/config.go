// Package config は、コマンドラインフラグ・環境変数・.env ファイルから実行設定を組み立てます。
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shouni/lj-archive/pkg/archive"
)

// EnvPrefix は環境変数のプレフィックスです (例: LJ_ARCHIVE_DESTINATION)。
const EnvPrefix = "LJ_ARCHIVE"

// フラグ名 (= viper のキー)
const (
	KeyDestination  = "destination"
	KeyDebug        = "debug"
	KeyFrontMatter  = "front-matter"
	KeyFeed         = "feed"
	KeyAllowRevisit = "allow-revisit"
	KeyTimeout      = "timeout"
)

const (
	DefaultDestination = "html"
	DefaultTimeoutSec  = 30 // 秒
)

// Config はクロール1回分の実行設定です。
type Config struct {
	Destination  string   // 出力先ディレクトリ
	Debug        int      // 0 より大きい場合、抽出した値をデバッグ出力する
	FrontMatter  []string // title 行の後に書き込む固定のヘッダー行
	Feed         bool     // 位置引数をフィードURLとして扱う
	AllowRevisit bool     // 訪問済みURLの検出を無効にする
	TimeoutSec   int      // HTTPリクエストのタイムアウト (秒)
}

// RegisterFlags は、クロールコマンド固有のフラグを登録します。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyDestination, DefaultDestination, "出力先ディレクトリ (存在しなければ作成)")
	fs.Int(KeyDebug, 0, "デバッグレベル (0 より大きい場合、抽出した値を出力)")
	fs.StringSlice(KeyFrontMatter, archive.DefaultFrontMatter, "title 行の後に書き込むヘッダー行")
	fs.Bool(KeyFeed, false, "URL をRSS/Atomフィードとして扱い、最新の記事から開始する")
	fs.Bool(KeyAllowRevisit, false, "同じURLの再訪を許可する (循環検出を無効化)")
}

// RegisterPersistentFlags は、すべてのサブコマンドで共有するフラグを登録します。
func RegisterPersistentFlags(fs *pflag.FlagSet) {
	fs.Int(KeyTimeout, DefaultTimeoutSec, "HTTPリクエストのタイムアウト時間（秒）")
}

// Load は、フラグ > 環境変数 > フラグのデフォルト値 の優先順位で設定を解決します。
// カレントディレクトリに .env があれば先に読み込みます。
func Load(fs *pflag.FlagSet) (Config, error) {
	// .env がなくてもエラーにはしない
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("フラグのバインドに失敗しました: %w", err)
	}

	cfg := Config{
		Destination:  strings.TrimSpace(v.GetString(KeyDestination)),
		Debug:        v.GetInt(KeyDebug),
		FrontMatter:  stringSlice(v, KeyFrontMatter),
		Feed:         v.GetBool(KeyFeed),
		AllowRevisit: v.GetBool(KeyAllowRevisit),
		TimeoutSec:   v.GetInt(KeyTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の妥当性を検証します。
func (c Config) Validate() error {
	if c.Destination == "" {
		return fmt.Errorf("出力先ディレクトリが指定されていません")
	}
	if c.TimeoutSec < 0 {
		return fmt.Errorf("タイムアウトには 0 以上を指定してください: %d", c.TimeoutSec)
	}
	return nil
}

// stringSlice は、環境変数から来た値をカンマ区切りとして扱います。
// viper の GetStringSlice は空白で分割するため、"layout: post" のような行が壊れます。
func stringSlice(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	lines := []string{}
	for _, line := range strings.Split(raw, ",") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
