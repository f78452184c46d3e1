// Package fuzzy ranks action names against a short query.
//
// Query characters must appear in the name in order, case-insensitively.
// Matches at CamelCase word starts rank higher, so "bkl" finds
// BackwardKillLine ahead of names where the letters are scattered.
package fuzzy
