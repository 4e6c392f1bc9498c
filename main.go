package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"memory-duel-server/api"
	"memory-duel-server/config"
	"memory-duel-server/game"
	"memory-duel-server/loghandler"
	"memory-duel-server/storage"
	"memory-duel-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables.")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.WSPort, "maxPlayers", cfg.MaxPlayers,
		"defaultDifficulty", cfg.DefaultDifficulty, "staticDir", cfg.StaticDir)

	ctx := context.Background()

	// Single shared room: one concurrent game per process, created at
	// startup and never torn down.
	room := game.NewRoom(cfg, nil)

	var store storage.HistoryStore
	if cfg.DatabaseURL != "" {
		s, err := storage.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("match history disabled", "tag", "storage", "err", err)
		} else {
			store = s
			defer s.Close()
			room.OnGameEnd = func(matchID string, difficulty game.Difficulty, p1, p2 string, scores game.Scoreboard, winnerSeat int) {
				// Off the room goroutine so a slow insert never stalls play.
				go func() {
					insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
					defer cancel()
					if err := s.InsertMatchResult(insertCtx, matchID, string(difficulty), p1, p2, scores.Player1, scores.Player2, winnerSeat); err != nil {
						slog.Error("recording match result", "tag", "storage", "match", matchID, "err", err)
					}
				}()
			}
		}
	} else {
		slog.Info("DATABASE_URL not set; match history disabled", "tag", "storage")
	}

	go room.Run(ctx)

	hub := ws.NewHub(cfg, room)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/matches", api.NewHandler(cfg, store).RecentMatches)
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	slog.Info("memory duel server listening", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
