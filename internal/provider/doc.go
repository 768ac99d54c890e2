// Package provider abstracts the Git hosting provider behind the
// capability set the aggregation pipeline needs. The GitHub
// implementation maps REST API failures onto the pipeline error
// taxonomy and retries throttling and transient network failures with
// bounded exponential backoff.
package provider
