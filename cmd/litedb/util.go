package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/litedb"
	"github.com/hupe1980/litedb/storage"
	miniostore "github.com/hupe1980/litedb/storage/minio"
	s3store "github.com/hupe1980/litedb/storage/s3"
)

const (
	// wrap is the number of characters to wrap the help text at
	wrap int = 50
)

// wrapString wraps a string at wrap characters
func wrapString(text string) string {
	var lines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > wrap {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// initConfig loads env files and maps LITEDB_* variables onto flag keys.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("litedb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

func logger() (*litedb.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", viper.GetString("log-level"))
	}
	if viper.GetBool("json") {
		return litedb.NewJSONLogger(level), nil
	}
	return litedb.NewTextLogger(level), nil
}

// openStore resolves a location to a store. Local paths are the default;
// s3:// and minio:// URLs name a bucket followed by an optional prefix.
func openStore(ctx context.Context, location string) (storage.Store, error) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return storage.NewLocalStore(location), nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("missing bucket in %q", location)
	}

	switch scheme {
	case "s3":
		optFns := []s3store.Option{s3store.WithPrefix(prefix)}
		if region := viper.GetString("s3-region"); region != "" {
			optFns = append(optFns, s3store.WithRegion(region))
		}
		if endpoint := viper.GetString("s3-endpoint"); endpoint != "" {
			optFns = append(optFns, s3store.WithEndpoint(endpoint))
		}
		return s3store.New(ctx, bucket, optFns...)
	case "minio":
		client, err := minio.New(viper.GetString("minio-endpoint"), &minio.Options{
			Creds: credentials.NewStaticV4(
				viper.GetString("minio-access-key"),
				viper.GetString("minio-secret-key"),
				"",
			),
			Secure: viper.GetBool("minio-secure"),
		})
		if err != nil {
			return nil, err
		}
		return miniostore.NewStore(client, bucket, prefix), nil
	default:
		return nil, fmt.Errorf("unsupported location scheme %q", scheme)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
