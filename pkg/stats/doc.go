// Package stats derives per-path sizes from a store dependency graph.
//
// # Closure Size
//
// The closure size of a path is the sum of NarSize over every distinct path
// reachable from it, itself included. Shared dependencies count once, so in a
// diamond A -> {B, C} -> D the size of D contributes to A exactly once.
// [Calculate] uses the closure size reported by Nix when available and walks
// the graph otherwise; both agree on consistent input.
//
// # Added Size
//
// The added size approximates how many bytes would stop being needed if a
// path were removed. It is the path's closure minus the closures of its
// siblings, the other direct references of its immediate parents. A path with
// several parents is shared and reports zero. This is cheaper than a dominator
// tree and under-counts or over-counts when sharing happens further up the
// graph.
//
// Added sizes are computed lazily per path on first access and cached.
//
// # Sorting
//
// [Sort] orders identifiers by name or by one of the two sizes; see
// [SortOrder].
package stats
