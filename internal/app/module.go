package app

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"securetodo/internal/shared"
)

// Module lets an fx based host embed the core. The host supplies
// *shared.AppConfig and zerolog.Logger.
var Module = fx.Module("securetodo",
	fx.Provide(
		newContainer,
		func(c *Container) *Controller { return c.Controller },
	),
)

func newContainer(lc fx.Lifecycle, cfg *shared.AppConfig, logger zerolog.Logger) (*Container, error) {
	// workers outlive the constructor, so they get their own context
	ctx, cancel := context.WithCancel(context.Background())

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			defer cancel()
			return c.Close(ctx)
		},
	})

	return c, nil
}
