// Package aggregates owns the transaction boundaries of writes that touch
// more than one table. Implementations compose the table-level repos from
// internal/data/repos.
package aggregates
