package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/app"
	"github.com/Clark-Hu/post-rating/internal/config"
	"github.com/Clark-Hu/post-rating/internal/presenter"
)

func main() {
	var (
		postID = flag.Int64("post", 0, "post ID to render")
		format = flag.String("format", presenter.FormatStars, "output format: stars or text")
		top    = flag.Int("top", 0, "list the N top-rated posts instead")
	)
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg.DBMigrate = false
	cfg.AdminEnabled = false

	logger := zap.NewNop()
	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer application.Close()

	view := application.Plugin.Presenter
	switch {
	case *top > 0:
		page, err := view.TopRated(ctx, presenter.WithLimit(*top))
		if err != nil {
			log.Fatalf("top rated: %v", err)
		}
		for _, item := range page.Items {
			fmt.Printf("%d\t%s\t%s\n", item.ID, item.MetaValue, item.Title)
		}
	case *postID > 0:
		out, err := view.Render(ctx, *postID, *format)
		if err != nil {
			log.Fatalf("render post %d: %v", *postID, err)
		}
		fmt.Println(out)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
