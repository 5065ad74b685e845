// Command litedb inspects and verifies litedb databases.
//
// Usage:
//
//	litedb tables <dir>
//	litedb inspect <table-dir>
//	litedb verify <table-dir>
//
// Locations are local directories or s3://bucket/prefix and
// minio://bucket/prefix URLs. Every flag can also be set through a LITEDB_
// environment variable, for example LITEDB_LOG_LEVEL=debug, or through a
// .env file in the working directory.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
