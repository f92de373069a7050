package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bnema/memefi-tapper/internal/adapters/proxy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const proxyCheckConcurrency = 8

type proxyCheckResult struct {
	proxy  string
	origin string
	err    error
}

func newProxyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Inspect configured proxies",
	}

	cmd.AddCommand(newProxyCheckCmd(opts))
	return cmd
}

func newProxyCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check every proxy and print the origin address it exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}

			logger, err := app.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			proxies, err := app.loadProxies(cmd.Context(), logger)
			if err != nil {
				return err
			}
			if len(proxies) == 0 {
				return fmt.Errorf("%w in %s", errNoProxies, app.proxies.Path())
			}

			results, err := runProxyChecks(cmd.Context(), cmd.ErrOrStderr(), proxies, app.settings.ProxyCheckURL)
			if err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, result := range results {
				if result.err != nil {
					failed++
					logger.Debug("proxy check failed", zap.String("proxy", result.proxy), zap.Error(result.err))
					if _, err := fmt.Fprintf(out, "%s  failed  %v\n", result.proxy, result.err); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintf(out, "%s  ok  %s\n", result.proxy, result.origin); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d proxies failed", failed, len(results))
			}
			return nil
		},
	}
}

// checkProxies checks proxies with bounded concurrency and reports each
// outcome through report as soon as it is known.
func checkProxies(ctx context.Context, proxies []*url.URL, endpoint string, report func(int, proxyCheckResult)) {
	var g errgroup.Group
	g.SetLimit(proxyCheckConcurrency)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			result := proxyCheckResult{proxy: proxy.Redact(proxyURL)}
			client, err := proxy.NewHTTPClient(proxyURL)
			if err != nil {
				result.err = err
			} else {
				result.origin, result.err = proxy.CheckOrigin(ctx, client, endpoint)
			}
			report(i, result)
			return nil
		})
	}
	_ = g.Wait()
}
