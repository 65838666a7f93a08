// Package feedcache downloads the upstream category feeds and keeps a
// local JSON cache of their items, partitioned by race kind.
package feedcache
