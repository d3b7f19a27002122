// Package pgrepos implements the core repositories on PostgreSQL via sqlx.
package pgrepos

import "github.com/lib/pq"

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

func emptyIfNil(ss []string) pq.StringArray {
	if ss == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ss)
}
