package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/engchi-backend/store"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Xoá toàn bộ bài học và tiến độ học (giữ tài khoản)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("thêm --yes để xác nhận xoá dữ liệu")
		}
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		ctx := cmd.Context()
		progress, err := store.NewProgressStore(db).DeleteAll(ctx)
		if err != nil {
			return err
		}
		lessons, err := store.NewLessonStore(db).DeleteAll(ctx)
		if err != nil {
			return err
		}
		log.Infof("đã xoá %d tiến độ và %d bài học", progress, lessons)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().Bool("yes", false, "xác nhận xoá")
}
