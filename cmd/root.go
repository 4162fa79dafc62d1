package cmd

import (
	"fmt"
	"log"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/lj-archive/internal/config"
)

// --- グローバル定数 ---

const appName = "lj-archive"

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.Short = "LiveJournal の記事を遡って取得し、Jekyll 用のHTMLとして保存するツール"
	config.RegisterPersistentFlags(rootCmd.PersistentFlags())
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	timeoutSec, err := cmd.Flags().GetInt(config.KeyTimeout)
	if err != nil {
		return fmt.Errorf("タイムアウトの取得に失敗しました: %w", err)
	}
	if timeoutSec < 0 {
		return fmt.Errorf("タイムアウトには 0 以上を指定してください: %d", timeoutSec)
	}

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウト: %d 秒 (リトライなし)", timeoutSec)
	}
	return nil
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	// clibase.Execute() の中でエラー時の os.Exit(1) が処理される
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		crawlCmd,
	)
}
