// Package provision bootstraps the schema and default data at startup
package provision

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Provisioner is a component that can idempotently bootstrap its part of the store
type Provisioner interface {
	EnsureProvisioned(ctx context.Context) error
}

// Run provisions every component concurrently and returns all their errors joined
func Run(ctx context.Context, provisioners map[string]Provisioner) error {
	p := pool.New().WithErrors().WithContext(ctx)

	for name, provisioner := range provisioners {
		p.Go(func(ctx context.Context) error {
			if err := provisioner.EnsureProvisioned(ctx); err != nil {
				log.Error().Err(err).Str("component", name).Msg("Provisioning failed")
				return err
			}

			log.Debug().Str("component", name).Msg("Provisioned")
			return nil
		})
	}

	return p.Wait()
}
