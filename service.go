package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ladle/feed"
	"ladle/fetch"
	"ladle/handler"
	"ladle/ingest"
	"ladle/model"
	"ladle/storage"
	"ladle/synth"
	"ladle/video"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "ladle"),
		Password: getParam("POSTGRES_PASSWORD", "ladle"),
		Database: getParam("POSTGRES_DB", "ladle"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", "error", err)
		os.Exit(1)
	}
	importRepo := storage.NewPostgresImportRepository(postgres)

	var vecRepo storage.RecipeVecRepository
	if host := getParam("WEAVIATE_HOST", ""); host != "" {
		weaviate, err := storage.NewWeaviate(host, getParam("WEAVIATE_APIKEY", ""), getParam("OPENAI_API_KEY", ""))
		if err != nil {
			logger.Error("unable to connect to weaviate", "error", err)
			os.Exit(1)
		}
		vecRepo = weaviate
	}

	client := fetch.NewClient(15 * time.Second)

	var ytService *youtube.Service
	if apiKey := getParam("YOUTUBE_API_KEY", ""); apiKey != "" {
		ytService, err = youtube.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			logger.Error("unable to create youtube service", "error", err)
			os.Exit(1)
		}
	}

	extractors := map[model.Platform]ingest.VideoExtractor{
		model.PlatformYouTube:   video.NewYouTube(ytService, client, logger),
		model.PlatformTikTok:    video.NewTikTok(client, logger),
		model.PlatformInstagram: video.NewInstagram(client, logger),
	}

	openAIClient := openai.NewClient(getParam("OPENAI_API_KEY", ""))
	synthesizer := synth.NewSynthesizer(openAIClient, getParam("OPENAI_MODEL", ""), logger)

	pipeline := ingest.NewPipeline(client, extractors, synthesizer, logger)
	importer := ingest.NewImporter(pipeline, importRepo, vecRepo, logger)

	if endpoint := getParam("MINIFLUX_ENDPOINT", ""); endpoint != "" {
		mflx := feed.NewMiniflux(feed.MinifluxInfo{
			Endpoint: endpoint,
			ApiKey:   getParam("MINIFLUX_APIKEY", ""),
		})
		feedInterval, err := time.ParseDuration(getParam("FEED_INTERVAL", "1m"))
		if err != nil {
			logger.Error("unable to parse feed interval", "error", err)
			os.Exit(1)
		}
		go feed.NewWatcher(mflx, importer, feedInterval, logger).Run(ctx)
	}

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", "error", err)
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(importer, importRepo, logger))
	logger.Info("http server started")

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
