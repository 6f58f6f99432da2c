package models

import "time"

// QueryResult holds the rows produced by executing a bound query
type QueryResult struct {
	Columns      []string
	Rows         []Row
	RowsAffected int64
	Duration     time.Duration
	Error        error
}

// Variables are named template values of a dashboard or block
type Variables map[string]any
