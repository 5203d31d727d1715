// Package grader runs a learner's SQL next to an exercise's reference
// SQL and turns the comparison into a verdict.
//
// Both statements execute through the same read-only runner, so the
// reference and the learner's answer see identical data and identical
// bounds. The comparison is order-insensitive unless the exercise pins
// ordering or the learner's query carries a top-level ORDER BY, and
// numeric cells compare within the exercise's tolerance.
//
// Every graded attempt gets a time-sortable attempt id so reports can
// be correlated across a session.
package grader
