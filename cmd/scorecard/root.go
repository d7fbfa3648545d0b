package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peoplesbranch/scorecard/internal/catalogcache"
	"github.com/peoplesbranch/scorecard/internal/config"
	"github.com/peoplesbranch/scorecard/internal/db"
	"github.com/peoplesbranch/scorecard/internal/legislation"
	"github.com/peoplesbranch/scorecard/internal/polls"
)

type digester interface {
	Digest(ctx context.Context, filters *legislation.ListFilters) ([]*legislation.VoteGroup, error)
	ResolveVote(ctx context.Context, id string) (*legislation.EnrichedVote, error)
}

type rollCaller interface {
	RollCall(ctx context.Context, repID string, scope polls.Scope) (*polls.RepRollCall, error)
	SilenceBoard(ctx context.Context, f polls.BoardFilter) (*polls.SilenceBoard, error)
}

type invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// services are wired once per invocation; tests install fakes directly
type services struct {
	congress int
	digests  digester
	analyzer rollCaller
	cache    invalidator // nil without REDIS_URL
	close    func()
}

var (
	svc     *services
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "Legislative roll-call digests and representative divergence",
	Long: `scorecard resolves roll-call votes to the bill, nomination or amendment
they concern, collapses them into one record per subject, and compares
representatives' threat poll positions with their constituents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if svc != nil {
			return nil
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		svc = s
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if svc != nil && svc.close != nil {
			svc.close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// connect wires Postgres, the optional Redis catalog cache and the services
func connect(ctx context.Context) (*services, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	database, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	closers := []func(){database.Close}

	var catalog legislation.Catalog = legislation.NewPostgresCatalog(database.Pool())
	var cache *catalogcache.Cache
	rdb, err := catalogcache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		database.Close()
		return nil, err
	}
	if rdb != nil {
		cache = catalogcache.New(rdb, catalog, cfg.CatalogCacheTTL)
		catalog = cache
		closers = append(closers, func() { _ = rdb.Close() })
	}

	s := &services{
		congress: cfg.Congress,
		digests:  legislation.NewService(legislation.NewStore(database.Pool()), catalog, nil),
		analyzer: polls.NewAnalyzer(polls.NewPostgresStore(database.Pool())),
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}
	if cache != nil {
		s.cache = cache
	}
	return s, nil
}

var errNoCache = errors.New("catalog cache not configured (set REDIS_URL)")
