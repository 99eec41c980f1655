// Package store defines persistence interfaces for job, unified-job and
// diary records, plus the shared error vocabulary implementations must
// speak. Records are written whole (atomic replace, last writer wins);
// there are no partial updates at this boundary.
package store
