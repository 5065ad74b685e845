package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = newRootCmd()

func init() {
	cobra.OnInitialize(initConfig)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "litedb",
		Short: "inspect embedded litedb databases",
		Long: `litedb (v` + version + `)

Inspect and verify the tables of a litedb database. Locations are local
directories or s3://bucket/prefix and minio://bucket/prefix URLs.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: bindFlags,
	}
	key := "json"
	cmd.PersistentFlags().Bool(key, false, wrapString("print reports and logs as JSON"))
	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", wrapString("minimum log level (debug, info, warn, error)"))
	key = "s3-region"
	cmd.PersistentFlags().String(key, "", wrapString("AWS region for s3:// locations"))
	key = "s3-endpoint"
	cmd.PersistentFlags().String(key, "", wrapString("custom endpoint for s3:// locations"))
	key = "minio-endpoint"
	cmd.PersistentFlags().String(key, "localhost:9000", wrapString("host:port of the MinIO server for minio:// locations"))
	key = "minio-access-key"
	cmd.PersistentFlags().String(key, "", wrapString("MinIO access key"))
	key = "minio-secret-key"
	cmd.PersistentFlags().String(key, "", wrapString("MinIO secret key"))
	key = "minio-secure"
	cmd.PersistentFlags().Bool(key, false, wrapString("connect to MinIO over TLS"))

	cmd.AddCommand(newTablesCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newVerifyCmd())
	return cmd
}
