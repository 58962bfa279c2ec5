// Package runtime resolves devflow.toml's runtime.profile ("host",
// "container", or "auto") to the effective profile a command should run
// under, per spec §4.5.
package runtime

import (
	"context"

	"github.com/docker/docker/client"

	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// EngineClient is the subset of the Docker Engine API the resolver needs,
// narrowed so tests can fake it instead of talking to a real daemon.
type EngineClient interface {
	ImageInspect(ctx context.Context, imageRef string) error
	Close() error
}

type dockerEngineClient struct {
	cli *client.Client
}

func (d *dockerEngineClient) ImageInspect(ctx context.Context, imageRef string) error {
	_, _, err := d.cli.ImageInspectWithRaw(ctx, imageRef)
	return err
}

func (d *dockerEngineClient) Close() error {
	return d.cli.Close()
}

// NewEngineClient connects to the local engine using the environment's
// DOCKER_HOST/context configuration, negotiating the API version.
func NewEngineClient() (EngineClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &dockerEngineClient{cli: cli}, nil
}

// PathLookup matches exec.LookPath's signature so tests can stub $PATH
// membership without touching the real filesystem.
type PathLookup func(string) (string, error)

// engineCandidates is the fixed fallback order auto resolution checks when
// container.engine is unset.
var engineCandidates = []string{"docker", "podman"}

// Resolve determines the effective runtime profile for cfg. lookup checks
// whether an engine binary is on $PATH; newEngineClient opens a connection
// to query image presence (nil skips the image check, used when no image
// is configured to test for).
func Resolve(ctx context.Context, cfg *config.Config, lookup PathLookup, newEngineClient func() (EngineClient, error)) (config.RuntimeProfile, error) {
	switch cfg.Runtime.Profile {
	case config.ProfileHost:
		return config.ProfileHost, nil
	case config.ProfileContainer:
		if err := requireEngine(ctx, cfg, lookup, newEngineClient); err != nil {
			return "", err
		}
		return config.ProfileContainer, nil
	default:
		return resolveAuto(ctx, cfg, lookup, newEngineClient)
	}
}

func resolveAuto(ctx context.Context, cfg *config.Config, lookup PathLookup, newEngineClient func() (EngineClient, error)) (config.RuntimeProfile, error) {
	engine := candidateEngines(cfg)

	var found string
	for _, e := range engine {
		if _, err := lookup(e); err == nil {
			found = e
			break
		}
	}
	if found == "" {
		return config.ProfileHost, nil
	}

	if cfg.Container.Image == "" || newEngineClient == nil {
		return config.ProfileContainer, nil
	}

	cli, err := newEngineClient()
	if err != nil {
		return config.ProfileHost, nil
	}
	defer cli.Close()

	if err := cli.ImageInspect(ctx, cfg.Container.Image); err != nil {
		return config.ProfileHost, nil
	}

	return config.ProfileContainer, nil
}

func requireEngine(ctx context.Context, cfg *config.Config, lookup PathLookup, newEngineClient func() (EngineClient, error)) error {
	engines := candidateEngines(cfg)

	var lastErr error
	for _, e := range engines {
		if _, err := lookup(e); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return dferrors.EngineMissing(engines[0], lastErr)
}

// candidateEngines returns the engine(s) a resolution attempt should check,
// per spec §4.5: the configured engine if one is named, else both docker
// and podman.
func candidateEngines(cfg *config.Config) []string {
	if cfg.Container.Engine != "" && cfg.Container.Engine != config.EngineAuto {
		return []string{string(cfg.Container.Engine)}
	}
	return engineCandidates
}
