package main

import (
	"context"
	"time"

	"github.com/niksmo/dealspot/config"
	"github.com/niksmo/dealspot/internal/app"
	"github.com/niksmo/dealspot/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	dealspot := app.New(sigCtx, cfg)

	dealspot.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	dealspot.Close(ctx)
}
