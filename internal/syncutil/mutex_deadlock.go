// internal/syncutil/mutex_deadlock.go

//go:build deadlock

// Package syncutil 提供帳戶與環形緩衝區共用的互斥鎖型別。
// 預設直接包裝 sync.Mutex；以 -tags=deadlock 建置時改用 go-deadlock，
// 於開發與壓力測試期間偵測鎖順序反轉與長時間等待。
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled 表示是否啟用死鎖偵測。
const DeadlockEnabled = true

func init() {
	// 轉帳臨界區極短；等待超過此時間即視為死鎖。
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
}

// Mutex is a mutual exclusion lock with lock-order tracking.
type Mutex struct {
	deadlock.Mutex
}
