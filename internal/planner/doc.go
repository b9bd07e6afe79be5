// Package planner turns match results into a collision-safe copy plan and
// executes it.
//
// Building a plan is a pure read of the filesystem: every best match gets a
// destination under the configured layout mode, collisions with existing
// files are resolved by the configured strategy, and collisions within the
// plan itself are resolved by renaming. Execution walks the plan in order,
// records per-item failures without aborting, and in dry-run mode produces
// identical counters with zero writes.
package planner
