package main

import (
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/deiteris/kurisu-bot/internal/eval"
	"github.com/deiteris/kurisu-bot/internal/gateway"
	"github.com/deiteris/kurisu-bot/internal/store"
	"github.com/deiteris/kurisu-bot/poker"
)

func listenAddrFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("POKER_ADDR")); v != "" {
		return v
	}
	return ":8080"
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	st, storeMode, err := store.NewFromEnv()
	if err != nil {
		log.Fatal("init store failed", zap.Error(err))
	}
	defer st.Close()

	gw := gateway.New(log, st)
	registry, err := poker.NewRegistry(poker.DefaultConfig(), gw, st, eval.New(), log)
	if err != nil {
		log.Fatal("init registry failed", zap.Error(err))
	}
	gw.SetRegistry(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := listenAddrFromEnv()
	log.Info("starting server",
		zap.String("addr", addr),
		zap.String("store", storeMode))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
