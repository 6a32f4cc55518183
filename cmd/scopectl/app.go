package main

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/scopectl/pkg/bridge"
	"github.com/go-go-golems/scopectl/pkg/config"
	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/router"
	"github.com/go-go-golems/scopectl/pkg/scope"
	"github.com/go-go-golems/scopectl/pkg/store"
	"github.com/rs/zerolog"
)

// app is the store every command runs on: the routing middleware first,
// then the optional action tap.
type app struct {
	router *router.Router
	store  *store.Store
	root   *scope.Context
	pubsub *gochannel.GoChannel
}

func newApp(cfg config.Config, logger zerolog.Logger, initial demo.State) *app {
	opts := cfg.RouterOptions()
	opts.Logger = &logger
	opts.RuntimeOptions = map[string]any{process.OptionLogger: logger}
	r := router.New(opts)

	a := &app{router: r}
	mws := []store.Middleware{r.Middleware()}
	if cfg.Tap.Enabled {
		a.pubsub = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, bridge.NewLogger(logger))
		mws = append(mws, bridge.Tap(a.pubsub, cfg.Tap.Topic, logger))
	}
	a.store = store.New(demo.NewReducer(r.LocalPrefix()), initial, mws...)
	a.root = scope.Root(a.store, scope.Options{LocalPrefix: r.LocalPrefix(), Logger: &logger})
	return a
}

func (a *app) Close() {
	a.router.Close()
	if a.pubsub != nil {
		_ = a.pubsub.Close()
	}
}
