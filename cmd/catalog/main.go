// Command catalog browses a JSON catalog feed in the terminal.
//
// Usage:
//
//	catalog                         Interactive browser (same as "catalog browse")
//	catalog query [flags]           Run one query and print the page as a table
//	catalog favorites list          Print favorite ids
//	catalog favorites toggle <id>   Flip favorites
//	catalog favorites clear         Remove every favorite
//	catalog events                  JSONL event log viewer
//
// Environment:
//
//	CATALOG_BASE_URL    Feed base URL (http(s):// or file://)
//	CATALOG_BACKEND     Favorites storage: sqlite, file, memory, postgres
//	CATALOG_DSN         Storage path or connection string
//	CATALOG_PAGE_SIZE   Entries per page
//	CATALOG_LOG_LEVEL   debug, info, warn, error
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
