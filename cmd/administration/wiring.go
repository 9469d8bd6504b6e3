package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/symbiote-h2020/Administration-sub000/internal/config"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/authority"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/boltstore"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/cachemem"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/db"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/metrics"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/notifier"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/policyopa"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/registry"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/security"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"
)

const (
	storeModePostgres = "postgres"
	storeModeBolt     = "bolt"
)

// federationStore is the selected repository plus what the process needs to probe and release it.
type federationStore struct {
	repo   usecase.FederationRepository
	mode   string
	health func(ctx context.Context) error
	close  func() error
}

// openStore prefers postgres when POSTGRES_DSN is set and falls back to the embedded bbolt file.
func openStore(ctx context.Context, cfg config.Config, migrate bool) (*federationStore, error) {
	pg, err := db.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	if pg.Enabled() {
		if migrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		return &federationStore{
			repo:   db.NewFederationRepository(pg.DB),
			mode:   storeModePostgres,
			health: pg.Ping,
			close:  pg.Close,
		}, nil
	}

	bolt, err := boltstore.Open(cfg.BoltPath)
	if err != nil {
		return nil, err
	}
	logger := log.WithComponent("store")
	logger.Info().Str("path", cfg.BoltPath).Msg("using embedded bbolt store")
	return &federationStore{
		repo:   bolt,
		mode:   storeModeBolt,
		health: func(context.Context) error { return nil },
		close:  bolt.Close,
	}, nil
}

type application struct {
	store       *federationStore
	signer      *security.Signer
	federations *usecase.FederationService
	joined      *usecase.JoinedFederationsQuery
	dispatcher  *notifier.Dispatcher
}

func buildApplication(ctx context.Context, cfg config.Config) (*application, error) {
	if cfg.AuthorityURL == "" {
		return nil, errors.New("AUTHORITY_URL is required")
	}
	logger := log.WithComponent("wiring")

	key, generated, err := security.KeyFromSeedHex(cfg.ServiceSigningKeySeedHex)
	if err != nil {
		return nil, err
	}
	signer, err := security.NewSigner(key, cfg.ServicePlatformID, cfg.ServiceComponentID, cfg.ServiceTokenTTL)
	if err != nil {
		return nil, err
	}
	if generated {
		logger.Warn().Str("public_key", signer.PublicKeyBase64()).Msg("SERVICE_SIGNING_KEY_SEED_HEX not set; generated an ephemeral signing key")
	}

	policy, err := policyopa.NewCreatePolicy(ctx, cfg.CreatePolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load create policy: %w", err)
	}
	logger.Info().Str("policy_hash", policy.Hash()).Bool("require_creator_ownership", cfg.RequireCreatorOwnership).Msg("create policy loaded")

	store, err := openStore(ctx, cfg, true)
	if err != nil {
		return nil, err
	}

	authorityClient := authority.New(cfg.AuthorityURL, signer, cfg.AuthorityTimeout)
	gate := usecase.NewOwnershipGate(authorityClient, cachemem.NewOwnershipCache(cfg.OwnershipCacheTTL))
	gate.Metrics = metrics.Ownership{}

	fanout := notifier.NewService(
		notifier.NewMemberClient(signer, cfg.NotifyTimeout),
		authorityClient,
		notifier.WithConcurrency(cfg.NotifyConcurrency),
		notifier.WithTimeout(cfg.NotifyTimeout),
	)
	app := &application{store: store, signer: signer}
	var sink usecase.Notifier = fanout
	if cfg.NotifyAsync {
		app.dispatcher = notifier.NewDispatcher(fanout, cfg.NotifyQueueSize, cfg.NotifyConcurrency)
		sink = app.dispatcher
	}

	opts := []usecase.FederationServiceOption{
		usecase.WithCreatePolicy(policy),
		usecase.WithCreatorOwnership(cfg.RequireCreatorOwnership),
	}
	if cfg.RegistryURL != "" {
		opts = append(opts, usecase.WithInformationModels(registry.New(cfg.RegistryURL, cfg.AuthorityTimeout)))
	}
	app.federations = usecase.NewFederationService(store.repo, gate, sink, opts...)
	app.joined = usecase.NewJoinedFederationsQuery(store.repo, authorityClient, signer)
	return app, nil
}

// shutdown drains pending notifications before the store goes away.
func (a *application) shutdown(ctx context.Context) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain notifications: %w", err))
		}
	}
	if a.store != nil && a.store.close != nil {
		if err := a.store.close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
