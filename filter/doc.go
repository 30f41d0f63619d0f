// Package filter implements substring filtering over a loaded registry table.
//
// Each criterion names a field and a search term. A record passes a criterion
// when the case-folded text of its value contains the case-folded term. All
// criteria combine with AND; empty terms impose no constraint. Null values
// never match a non-empty term. Output preserves table order.
package filter
