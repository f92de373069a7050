package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/bnema/memefi-tapper/internal/adapters/graphql"
	"github.com/bnema/memefi-tapper/internal/adapters/proxy"
	statusadapter "github.com/bnema/memefi-tapper/internal/adapters/render/status"
	tomlrepo "github.com/bnema/memefi-tapper/internal/adapters/repo/toml"
	chainstore "github.com/bnema/memefi-tapper/internal/adapters/signatures/chain"
	filestore "github.com/bnema/memefi-tapper/internal/adapters/signatures/file"
	redisstore "github.com/bnema/memefi-tapper/internal/adapters/signatures/redis"
	"github.com/bnema/memefi-tapper/internal/adapters/textfile"
	"github.com/bnema/memefi-tapper/internal/adapters/useragent"
	"github.com/bnema/memefi-tapper/internal/application"
	"github.com/bnema/memefi-tapper/internal/config"
	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
	"github.com/bnema/memefi-tapper/internal/ports"
	"go.uber.org/zap"
)

var errNoProxies = errors.New("no proxies configured")

type rootOptions struct {
	configFile string
	envFile    string
}

type app struct {
	settings       config.Settings
	credentials    *textfile.Store
	proxies        *textfile.Store
	snapshots      *tomlrepo.Repository
	statusRenderer func([]domain.SessionSnapshot, statusadapter.RenderOptions) (string, error)
	clock          ports.Clock
	random         ports.Random
}

func wireApp(opts *rootOptions) (*app, error) {
	settings, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	snapshots, err := tomlrepo.NewRepository(settings.SnapshotsPath)
	if err != nil {
		return nil, fmt.Errorf("wire snapshot repository: %w", err)
	}

	return &app{
		settings:       settings,
		credentials:    textfile.NewStore(settings.QueryIDsPath),
		proxies:        textfile.NewStore(settings.ProxiesPath),
		snapshots:      snapshots,
		statusRenderer: statusadapter.Render,
		clock:          ports.SystemClock{},
		random:         ports.SystemRandom{},
	}, nil
}

func (a *app) newLogger(output io.Writer) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  a.settings.Log.Level,
		Format: a.settings.Log.Format,
		Output: output,
	})
}

// openSignatureStore builds the configured user agent backend. The returned
// close func releases the redis connection when one was opened. In chain mode
// an unreachable redis only warns: every call then falls back to the file.
func (a *app) openSignatureStore(ctx context.Context, logger *zap.Logger) (ports.SignatureStore, func() error, error) {
	noop := func() error { return nil }

	file, err := filestore.NewStore(a.settings.SignaturesPath)
	if err != nil {
		return nil, noop, fmt.Errorf("wire signature file store: %w", err)
	}

	switch a.settings.SignatureStore {
	case config.SignatureStoreFile:
		return file, noop, nil
	case config.SignatureStoreRedis:
		client, err := redisstore.Dial(ctx, a.settings.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("wire signature redis store: %w", err)
		}
		return redisstore.NewStore(client, a.settings.Redis.Key), client.Close, nil
	}

	client := redisstore.NewClient(a.settings.Redis)
	if err := redisstore.Ping(ctx, client); err != nil {
		if ctx.Err() != nil {
			_ = client.Close()
			return nil, noop, ctx.Err()
		}
		logger.Warn("redis unavailable, user agents fall back to file",
			zap.String("path", a.settings.SignaturesPath),
			zap.Error(err),
		)
	}

	chained, err := chainstore.NewStore(redisstore.NewStore(client, a.settings.Redis.Key), file)
	if err != nil {
		_ = client.Close()
		return nil, noop, fmt.Errorf("wire signature store chain: %w", err)
	}

	return chained, client.Close, nil
}

// loadProxies parses the proxy file. Invalid lines are reported through
// logger and skipped.
func (a *app) loadProxies(ctx context.Context, logger *zap.Logger) ([]*url.URL, error) {
	lines, err := a.proxies.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load proxies: %w", err)
	}

	proxies, err := proxy.ParseAll(lines)
	if err != nil {
		logger.Warn("skipping invalid proxies", zap.Error(err))
	}

	return proxies, nil
}

// newDialer returns the per-session client factory: a proxied HTTP client,
// the session's persisted user agent and an optional egress check.
func (a *app) newDialer(signatures ports.SignatureStore, logger *zap.Logger) application.DialFunc {
	generator := useragent.NewGenerator(a.random)

	return func(ctx context.Context, identity domain.Identity, proxyURL *url.URL) (ports.GameAPI, error) {
		sessionLog := logging.ForSession(logger, identity.SessionName())

		httpClient, err := proxy.NewHTTPClient(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("build http client: %w", err)
		}

		userAgent, err := useragent.Ensure(ctx, signatures, generator, identity.SessionName())
		if err != nil {
			return nil, err
		}

		if a.settings.CheckProxy && proxyURL != nil {
			origin, err := proxy.CheckOrigin(ctx, httpClient, a.settings.ProxyCheckURL)
			if err != nil {
				sessionLog.Warn("proxy check failed", zap.String("proxy", proxy.Redact(proxyURL)), zap.Error(err))
			} else {
				sessionLog.Info("proxy ok", zap.String("proxy", proxy.Redact(proxyURL)), zap.String("origin", origin))
			}
		}

		client := graphql.NewClient(a.settings.GraphQLURL, httpClient, userAgent)
		client.RequestTimeout = a.settings.RequestTimeout
		return client, nil
	}
}

const defaultStaleAfter = 30 * time.Minute
