package lockmgr

import (
	"github.com/txstore-io/txstore/lib/records"
)

// normalizeHolder substitutes the fixed default identity for an empty
// holder. The substitution must be the same constant on every call so that
// unlabeled operations from unrelated call sites are indistinguishable from
// re-entrant operations by one owner.
func normalizeHolder(holder string) string {
	if holder == "" {
		return records.DefaultHolder
	}
	return holder
}
