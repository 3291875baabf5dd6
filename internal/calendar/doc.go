// Package calendar aligns bitmaps with the week grid of a year.
//
// A contribution grid has one column per week and one row per weekday.
// Column 0 starts on the configured week start (Sunday by default) on or
// before January 1, so the first and last columns are usually partial. Cells
// whose date falls outside the target year are clipped, matching how the
// graph itself renders only the days of that year.
package calendar
