// cmd/dashboard/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/alerting"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/anomaly"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/api"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/command"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/config"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/ingest"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/mqtt"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/storage"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/websocket"
)

const connectTimeout = 5 * time.Second

func main() {
	// --- Configuration ---
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	webDir := flag.String("webdir", "./web", "Path to the web assets directory")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	// --- Initialize Components ---
	store := storage.NewStore(cfg.History.Size)
	for _, rt := range cfg.Routes {
		switch rt.Kind {
		case data.KindStatus:
			store.RegisterStatus(rt.Metric, rt.Default)
		default:
			store.RegisterNumeric(rt.Metric, rt.Axis)
		}
	}

	hub := websocket.NewHub(log)
	detector := anomaly.NewDetector(cfg.Anomaly, log)
	alerter := alerting.NewAlerter(hub, log)
	router := ingest.NewRouter(store, cfg.Routes, detector, alerter, hub, log)

	topics := make([]string, len(cfg.Routes))
	for i, rt := range cfg.Routes {
		topics[i] = rt.Topic
	}
	client := mqtt.NewClient(cfg.MQTT, topics, func(topic, payload string) {
		router.Route(topic, payload) // router logs and drops failures itself
	}, log)

	dispatcher := command.NewDispatcher(client, cfg.MQTT.ControlTopic, log)
	apiHandler := api.NewAPIHandler(store, dispatcher, hub, *webDir, log)

	// --- Start WebSocket Hub ---
	go hub.Run()

	// --- Connect to the broker ---
	// A dead broker degrades data freshness, not availability: the HTTP
	// surface stays up and the client keeps retrying in the background.
	if err := client.Connect(connectTimeout); err != nil {
		log.Errorf("MQTT connect: %v (continuing offline)", err)
	}

	// --- Setup HTTP Server ---
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.SetupRouter(apiHandler),
	}

	go func() {
		log.Infof("Starting dashboard server on %s", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
	client.Disconnect()

	log.Info("Server gracefully stopped.")
}
