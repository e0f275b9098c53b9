package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	server "orb-arena/server"
	"orb-arena/server/logging"
	"orb-arena/server/logging/sinks"
)

func main() {
	var (
		addr      string
		playerArc string
		enemyArc  string
		seed      string
		statsPath string
		logPath   string
		flat      bool
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&playerArc, "player", "bruiser", "player archetype (pyro, gunner, bruiser, stray)")
	flag.StringVar(&enemyArc, "enemy", "pyro", "enemy archetype")
	flag.StringVar(&seed, "seed", "", "simulation seed")
	flag.StringVar(&statsPath, "stats", "config/archetypes.yaml", "path to the YAML stat file")
	flag.StringVar(&logPath, "log-json", "", "append structured events to this file")
	flag.BoolVar(&flat, "flat", false, "run without arena obstacles")
	flag.Parse()

	router, err := buildLogging(logPath)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	cfg := server.WorldConfig{
		PlayerArchetype: server.Archetype(playerArc),
		EnemyArchetype:  server.Archetype(enemyArc),
		Obstacles:       !flat,
		Seed:            seed,
	}
	if tables, err := server.LoadStatTables(statsPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("no stat file at %s, using built-in defaults", statsPath)
		} else {
			log.Fatalf("%v", err)
		}
	} else {
		cfg.Stats = tables
	}

	hub := server.NewHub(cfg, router)

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	go watchStats(hub, statsPath)

	log.Printf("server listening on %s", addr)
	if err := http.ListenAndServe(addr, server.NewMux(hub)); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func buildLogging(logPath string) (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsole(os.Stdout, cfg.Console)},
	}
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval),
		})
		cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
	}
	return logging.NewRouter(nil, cfg, named)
}

// watchStats hot-reloads the stat file on edit. Invalid files are logged
// and skipped; the running balance stays untouched.
func watchStats(hub *server.Hub, statsPath string) {
	dir := filepath.Dir(statsPath)
	if _, err := os.Stat(dir); err != nil {
		return
	}
	watcher, err := server.NewStatWatcher(dir)
	if err != nil {
		log.Printf("stat watcher disabled: %v", err)
		return
	}
	defer watcher.Close()

	for {
		select {
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(path) != filepath.Clean(statsPath) {
				continue
			}
			tables, err := server.LoadStatTables(statsPath)
			if err != nil {
				log.Printf("stat reload skipped: %v", err)
				continue
			}
			hub.ApplyStatTables(tables)
			log.Printf("reloaded stats from %s", statsPath)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("stat watcher: %v", err)
		}
	}
}
