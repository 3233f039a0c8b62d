// internal/bank/account.go
//
// 本檔定義 Account：每個帳戶擁有自己的互斥鎖，餘額只在持有該鎖時讀寫。
// id 於建立時指定且不可變，僅作為取鎖順序（由小到大）的全域排序鍵。

package bank

import (
	"golang.org/x/sys/cpu"

	"lockstep/internal/syncutil"
)

// Account represents a bank account with its own lock.
type Account struct {
	_       cpu.CacheLinePad // 相鄰帳戶的鎖不共用 cache line
	id      int
	mu      syncutil.Mutex
	balance int64
}

func newAccount(id int, balance int64) *Account {
	return &Account{id: id, balance: balance}
}

// ID 回傳帳戶編號。
func (a *Account) ID() int { return a.id }

// Balance 在帳戶鎖保護下讀取目前餘額。
func (a *Account) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}
