package main

import (
	"log"
	"net/http"

	"github.com/rs/cors"
	"github.com/spf13/viper"

	"github.com/moneyhelper/backend/internal/api"
	"github.com/moneyhelper/backend/internal/service"
	"github.com/moneyhelper/backend/internal/store"
)

func main() {
	viper.SetDefault("port", "8090")
	viper.SetDefault("db_path", "moneyhelper.db")
	viper.SetDefault("use_memory_store", false)
	viper.SetDefault("cors_origins", "*")
	viper.AutomaticEnv()

	var st store.Store
	if viper.GetBool("use_memory_store") {
		log.Println("[server] using in-memory store")
		st = store.NewMemoryStore()
	} else {
		dbPath := viper.GetString("db_path")
		sqliteStore, err := store.OpenSQLite(dbPath)
		if err != nil {
			log.Fatalf("[server] open store at %s: %v", dbPath, err)
		}
		defer sqliteStore.Close()
		log.Printf("[server] using sqlite store at %s", dbPath)
		st = sqliteStore
	}

	importer := service.NewImportService(st)
	predictions := service.NewPredictionService(st)

	mux := http.NewServeMux()
	api.NewHandler(st, importer, predictions).RegisterRoutes(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: viper.GetStringSlice("cors_origins"),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)

	addr := ":" + viper.GetString("port")
	log.Printf("[server] listening on %s", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		log.Fatalf("[server] serve: %v", err)
	}
}
