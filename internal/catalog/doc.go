// Package catalog loads the season race catalog and expands its entries
// into monitorable store rows.
package catalog
