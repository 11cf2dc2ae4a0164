package storage

import "fmt"

const (
	cashGroupKeyPrefix = "curve:cashgroup:"
	marketKeyPrefix    = "curve:market:"

	snapshotBackupKey = "curve:snapshot_backup"

	// Data versioning keys
	dataVersionKey = "curve:data_version"
	leaderLockKey  = "curve:leader_lock"
)

func cashGroupKey(id CurrencyID) string {
	return fmt.Sprintf("%s%d", cashGroupKeyPrefix, id)
}

func marketKey(id CurrencyID, maturity int64) string {
	return fmt.Sprintf("%s%d:%d", marketKeyPrefix, id, maturity)
}

func marketPrefix(id CurrencyID) string {
	return fmt.Sprintf("%s%d:", marketKeyPrefix, id)
}
