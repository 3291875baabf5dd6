// Package harness runs end-to-end generate scenarios against a recording
// repository and an in-memory run ledger.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: dash_push
//	description: "Five commits, then remote setup and push"
//	now: 2026-10-19T08:00:00Z
//	config:
//	  year: 2025
//	  text: "-"
//	  intensities: "1,1,1"
//	  push: true
//	  remote_url: git@example.com:me/art.git
//	remotes:
//	  - name: origin
//	    url: git@example.com:old.git
//	failures:
//	  - op: commit
//	    at: 3
//	    message: "exit status 1"
//	expect_error: "exit status 1"
//	assertions:
//	  - type: call_count
//	    op: commit
//	    count: 5
//	  - type: call_order
//	    ops: [list-remotes, add-remote, push]
//	  - type: commits_on
//	    day: 2025-01-01
//	    count: 1
//	  - type: ledger
//	    expect: { status: succeeded, committed: 5 }
//
// The config block uses the same keys as a gogreen YAML config file and is
// layered over the built-in defaults, then normalized.
//
// # Assertion Types
//
//   - call_count: an operation was called exactly N times
//   - call_order: operations appear in this relative order
//   - commits_on: N commits are dated on a day
//   - ledger: the recorded run has these field values
//
// # Golden Files
//
// RunWithGolden compares the call trace against testdata/golden/{name}.golden.
// Commit messages and times are left out of the trace so that golden files do
// not depend on the random source; commits are traced by day.
package harness
