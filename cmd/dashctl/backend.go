package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"

	"signaldesk/internal/backend"
	"signaldesk/internal/collection"
	"signaldesk/internal/config"
	applog "signaldesk/internal/log"
)

const (
	backendFlag  = "backend"
	dbFlag       = "db"
	seedFileFlag = "seed-file"
	logLevelFlag = "log-level"
)

// backendFlags returns a fresh flag map so every command registers its own.
func backendFlags() map[string]cobraflags.Flag {
	defaults := config.Load()
	return map[string]cobraflags.Flag{
		backendFlag: &cobraflags.StringFlag{
			Name:  backendFlag,
			Value: defaults.DataBackend,
			Usage: "Data backend (" + strings.Join(backend.GetBackendTypeStrings(), ", ") + ")",
		},
		dbFlag: &cobraflags.StringFlag{
			Name:  dbFlag,
			Value: defaults.SQLiteDBPath,
			Usage: "SQLite database path",
		},
		seedFileFlag: &cobraflags.StringFlag{
			Name:  seedFileFlag,
			Value: defaults.SeedFile,
			Usage: "YAML fixtures used when a collection starts empty",
		},
		logLevelFlag: &cobraflags.StringFlag{
			Name:  logLevelFlag,
			Value: "warn",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

func openBackend(ctx context.Context, flags map[string]cobraflags.Flag) (*backend.BackendResult, *applog.Logger, error) {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(flags[logLevelFlag].GetString()),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})

	cfg := backend.Config{
		Type:         backend.BackendType(flags[backendFlag].GetString()),
		SeedFile:     flags[seedFileFlag].GetString(),
		SQLiteDBPath: flags[dbFlag].GetString(),
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return res, logger, nil
}

func closeBackend(res *backend.BackendResult, logger *applog.Logger) {
	if res.Cleanup == nil {
		return
	}
	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", applog.FieldError, err)
	}
}

// parseFilters reads "key=value,key=value" into category filters.
func parseFilters(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q: want key=value", pair)
		}
		out[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return out, nil
}

func buildQuery(search, filters string) (collection.Query, error) {
	cats, err := parseFilters(filters)
	if err != nil {
		return collection.Query{}, err
	}
	return collection.Query{Search: search, Categories: cats}, nil
}
