package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinehub/config"
	"cinehub/handlers"
	"cinehub/internal/database"
	"cinehub/internal/ratelimit"
	"cinehub/services/cache"
	imagesvc "cinehub/services/images"
	interactionsvc "cinehub/services/interactions"
	moviesvc "cinehub/services/movies"
	"cinehub/services/tmdb"
	"cinehub/utils"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the settings file")
	flag.Parse()

	settings, err := config.NewManager(*configPath).Load()
	if err != nil {
		log.Fatalf("[main] load settings: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   settings.Logging.Path,
		MaxSize:    settings.Logging.MaxSizeMB,
		MaxBackups: settings.Logging.MaxBackups,
		MaxAge:     settings.Logging.MaxAgeDays,
	}))

	if settings.Tmdb.APIKey == "" {
		log.Fatalf("[main] no provider API key configured, set tmdb.apiKey in %s", *configPath)
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Users.EnsureDefaultUser(ctx); err != nil {
		log.Fatalf("[main] ensure default user: %v", err)
	}

	badgerDB, err := cache.Open(settings.Cache.Path)
	if err != nil {
		log.Fatalf("[main] open cache: %v", err)
	}
	defer badgerDB.Close()

	store := cache.NewStore(badgerDB, cache.Options{
		InstanceName:  settings.Cache.InstanceName,
		DefaultExpiry: settings.Cache.DefaultExpiry(),
		EnableLogging: settings.Cache.EnableLogging,
	})

	limiter := ratelimit.New(settings.Tmdb.RequestsPerSecondLimit)
	provider := tmdb.NewClient(settings.Tmdb, limiter)

	movies := moviesvc.NewService(provider, store, db)
	interactions := interactionsvc.NewService(provider, store, db)

	if err := os.MkdirAll(settings.Images.CachePath, 0755); err != nil {
		log.Fatalf("[main] create image cache directory: %v", err)
	}
	imageFs := afero.NewBasePathFs(afero.NewOsFs(), settings.Images.CachePath)
	images := imagesvc.NewService(imageFs, settings.Tmdb.ImageBaseURL)

	if settings.Sync.Enabled {
		syncer := moviesvc.NewSyncer(movies, settings.Sync.Interval())
		go syncer.Run(ctx)
	}

	router := utils.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	moviesHandler := handlers.NewMoviesHandler(movies)
	genresHandler := handlers.NewGenresHandler(movies)
	interactionsHandler := handlers.NewInteractionsHandler(interactions)
	commentsHandler := handlers.NewCommentsHandler(interactions)
	imagesHandler := handlers.NewImagesHandler(images)

	api.HandleFunc("/genres/{mediaType}", genresHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", interactionsHandler.Watchlist).Methods(http.MethodGet)

	api.HandleFunc("/{mediaType}/trending", moviesHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/search", moviesHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/all", moviesHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}", moviesHandler.Details).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/credits", moviesHandler.Credits).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/videos", moviesHandler.Videos).Methods(http.MethodGet)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/sync", moviesHandler.Sync).Methods(http.MethodPost)

	api.HandleFunc("/{mediaType}/{id:[0-9]+}/like", interactionsHandler.ToggleLike).Methods(http.MethodPost)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/dislike", interactionsHandler.ToggleDislike).Methods(http.MethodPost)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/watchlist", interactionsHandler.ToggleWatchlist).Methods(http.MethodPost)
	api.HandleFunc("/{mediaType}/{id:[0-9]+}/interaction", interactionsHandler.GetInteraction).Methods(http.MethodGet)

	api.HandleFunc("/movies/{id:[0-9]+}/comments", commentsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/comments", commentsHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/comments/{commentID}", commentsHandler.Delete).Methods(http.MethodDelete)

	router.HandleFunc("/images/{size}/{file}", imagesHandler.Get).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         settings.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
