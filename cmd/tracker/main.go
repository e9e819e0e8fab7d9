package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/passport-z-sandbox/config"
	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/service"
	"github.com/vocdoni/passport-z-sandbox/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	conf := config.Default()
	conf.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Init(conf.LogLevel, conf.LogOutput, nil)

	database, err := metadb.New(conf.DBType, conf.DataDir)
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	apiService := service.NewAPI(stg, conf.Host, conf.Port)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := apiService.Start(ctx); err != nil {
		log.Fatal(err)
	}
	log.Infow("commitment tracker started", "host", conf.Host, "port", conf.Port, "datadir", conf.DataDir)

	<-ctx.Done()
	log.Info("shutting down")
	apiService.Stop()
}
