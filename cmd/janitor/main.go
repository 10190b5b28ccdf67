// Janitor runs the periodic maintenance routines of a package registry.
//
// It removes deleted libraries together with their artifacts, prunes old
// versions beyond a retention count, and spreads the metadata sync schedule
// evenly over a 24 hour window.
//
// Usage:
//
//	# Run the maintenance daemon (cron schedules, metrics, health)
//	janitor run --config /etc/janitor/janitor.yaml
//
//	# Delete one library and its archives
//	janitor delete-library 42
//
//	# Keep only the newest 5 versions of every library
//	janitor prune --keep 5
//
//	# Rewrite the sync schedule now
//	janitor optimize-sync
//
//	# Show recent maintenance runs
//	janitor runs --limit 20
package main

import "os"

func main() {
	os.Exit(Execute())
}
