package service

import (
	"context"
	"time"

	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/log"
	"golang.org/x/sync/errgroup"
)

// DownloadArtifacts downloads the artifacts of every circuit concurrently.
func DownloadArtifacts(timeout time.Duration, artifacts map[circuits.CircuitID]*circuits.CircuitArtifacts) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for id, ca := range artifacts {
		g.Go(func() error {
			log.Infow("downloading circuit artifacts", "circuit", id)
			return ca.DownloadAll(ctx)
		})
	}
	return g.Wait()
}
