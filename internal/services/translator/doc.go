// Package translator translates segment text through an OpenAI-compatible
// chat completions API.
//
// Segments are sent in batches with their neighbors as context, and the model
// is required to answer with a JSON array of translations in the same order.
// Transient HTTP failures and rate limits retry with capped exponential
// backoff.
package translator
