package cmd

import (
	"fmt"
	"os"
	"os/signal"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/lj-archive/internal/config"
	"github.com/shouni/lj-archive/internal/logging"
	"github.com/shouni/lj-archive/internal/pipeline"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [URL]",
	Short: "指定した記事から前の記事へのリンクを辿り、すべての記事を保存します",
	Long: `指定した記事のURL (例: http://yourusername.livejournal.com/most-recent-entry.html) から
「Previous Entry」リンクを辿り、リンクがなくなるまで1記事ずつ取得して
"<更新日>-<タイトル>.html" 形式のファイルとして出力先ディレクトリに保存します。
最初のエラーで処理を中止します。それまでに保存したファイルは残ります。`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 設定の解決 (フラグ > 環境変数 > デフォルト)
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("設定の読み込みエラー: %w", err)
		}

		// 2. URLのスキーム補完とバリデーション
		startURL, err := ensureScheme(args[0])
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		// 3. ロガーの初期化 (--debug または --verbose でデバッグ出力)
		logger, err := logging.New(cfg.Debug, clibase.Flags.Verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		// 4. Ctrl+C で現在の記事の処理後に中止できるようにする
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		logger.Info("クロールを開始します",
			zap.String("url", startURL),
			zap.String("destination", cfg.Destination),
			zap.Bool("feed", cfg.Feed))

		// 5. メインロジックの実行
		summary, err := pipeline.Run(ctx, pipeline.Options{
			StartURL: startURL,
			Config:   cfg,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("アーカイブ処理の実行エラー (保存済み: %d 件): %w", len(summary.Files), err)
		}

		// 6. 結果の出力
		fmt.Printf("完了: %d 件の記事を %s に保存しました\n", len(summary.Files), cfg.Destination)
		return nil
	},
}

func init() {
	config.RegisterFlags(crawlCmd.Flags())
}
