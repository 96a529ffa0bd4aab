package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/config"
	"regionatlas.dev/internal/persistence/r2s3"
)

// buildMirror returns nil when mirroring is disabled.
func buildMirror(cfg config.Mirror, outDir string, logger logrus.FieldLogger) (*r2s3.Mirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := r2s3.New(r2s3.Config{
		Endpoint:        cfg.Endpoint,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return r2s3.NewMirror(client, outDir, r2s3.MirrorOptions{
		Prefix:        cfg.Prefix,
		Workers:       cfg.Workers,
		QueueCapacity: cfg.QueueCapacity,
		EnqueueWait:   time.Duration(cfg.EnqueueWaitMs) * time.Millisecond,
	}, logger), nil
}
