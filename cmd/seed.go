package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vnkhanh/engchi-backend/services"
	"github.com/vnkhanh/engchi-backend/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Nhập bài học từ thư mục chứa file .json và .xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		importer := services.NewLessonImporter(store.NewLessonStore(db), log)
		report, err := importer.ImportDir(cmd.Context(), dir)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"files":   report.Files,
			"created": report.Created,
			"updated": report.Updated,
			"errors":  len(report.Errors),
		}).Info("seed xong")
		for _, e := range report.Errors {
			log.Warn(e)
		}
		if len(report.Errors) > 0 {
			return fmt.Errorf("%d file lỗi", len(report.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("dir", "seed", "thư mục chứa dữ liệu bài học")
}
