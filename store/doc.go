// Package store defines the credential storage contract and its Redis
// implementation. Four principal collections share one record shape; tenant
// administrators are embedded in the tenant record and surfaced as
// synthesized principals. All identity lookups are case-insensitive and
// skip soft-deleted records, and failure counters are incremented
// store-side so concurrent login failures never under-count.
package store
