package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engchi",
	Short: "Backend học từ vựng, dịch, đọc hiểu và ngữ pháp Anh/Trung",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Không có subcommand thì chạy server
		return serveCmd.RunE(cmd, args)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
