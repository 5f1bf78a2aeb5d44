// Package wire aggregates the major services for injection into commands.
package wire

import (
	"context"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/halvard/notedown/internal/config"
	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/internal/render"
)

// App carries the wired services a command needs.
type App struct {
	Cfg      *viper.Viper
	Log      *log.Logger
	Store    db.Store
	Renderer *render.Renderer
}

// BuildApp wires dependencies from the loaded config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	logger := log.New(os.Stderr, "notedown ", log.LstdFlags)
	store, err := db.Open(ctx, config.ResolveDBURL(v))
	if err != nil {
		return nil, err
	}
	return &App{
		Cfg:      v,
		Log:      logger,
		Store:    store,
		Renderer: render.New(v.GetBool("render.strict_lists")),
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
