// Package analyze defines the contract between the aggregation
// pipeline and the downstream analysis step: the findings shape, the
// Analyzer interface, the report assembled for the output writers, and
// the prompt built from a normalized record for external analysis.
package analyze
