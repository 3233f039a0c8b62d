// internal/bank/bank.go

// Package bank 定義核心商業邏輯：固定帳戶集合上的轉帳與總額稽核。
// 與單一全域鎖不同，每個帳戶各自持有一把互斥鎖；轉帳同時需要兩把鎖，
// 一律依帳戶 id 由小到大取得，因此任意交錯的並發轉帳都不會互相等待成環（無死鎖）。
// 不共用帳戶的兩筆轉帳完全不競爭；共用一或兩個帳戶的轉帳則嚴格序列化。
//
// 鎖為 Go 的 sync.Mutex：不保證公平性，等待過久時會切換為飢餓模式（FIFO 交棒）。
// 金額以 int64 的最小貨幣單位儲存。
package bank

import (
	"fmt"
	"math"
)

// Ledger 為聚合根 (Aggregate Root)：持有固定數量的帳戶。
// accounts 於 New 時建立一次，之後不再增減；accounts[i].id == i。
type Ledger struct {
	accounts []*Account
}

// New 依序以 balances 建立帳戶，第 i 個帳戶的 id 為 i。
// 初始餘額不得為負，總和不得超過 math.MaxInt64，且至少要有一個帳戶。
// 轉帳只搬移金額，因此之後任何單一餘額與總額都不會超過此總和（不會溢位）。
func New(balances ...int64) (*Ledger, error) {
	if len(balances) == 0 {
		return nil, ErrBadAccountCount
	}
	l := &Ledger{accounts: make([]*Account, len(balances))}
	var sum int64
	for i, b := range balances {
		if b < 0 {
			return nil, fmt.Errorf("account %d: %w", i, ErrBadAmount)
		}
		if b > math.MaxInt64-sum {
			return nil, fmt.Errorf("account %d: total balance overflows int64: %w", i, ErrBadAmount)
		}
		sum += b
		l.accounts[i] = newAccount(i, b)
	}
	return l, nil
}

// NewUniform 建立 n 個初始餘額皆為 balance 的帳戶。
func NewUniform(n int, balance int64) (*Ledger, error) {
	if n <= 0 {
		return nil, ErrBadAccountCount
	}
	balances := make([]int64, n)
	for i := range balances {
		balances[i] = balance
	}
	return New(balances...)
}

// Len 回傳帳戶數量。
func (l *Ledger) Len() int { return len(l.accounts) }

// Account 依 id 取得帳戶；不存在回傳 ErrNotFound。
func (l *Ledger) Account(id int) (*Account, error) {
	if id < 0 || id >= len(l.accounts) {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return l.accounts[id], nil
}

// Accounts 回傳帳戶切片的拷貝（依 id 排序），呼叫端無法改動 Ledger 的帳戶集合。
func (l *Ledger) Accounts() []*Account {
	out := make([]*Account, len(l.accounts))
	copy(out, l.accounts)
	return out
}

// owns 判斷 a 是否為本 Ledger 建立的帳戶。指標比較只用於歸屬檢查，不用於取鎖排序。
func (l *Ledger) owns(a *Account) bool {
	return a != nil && a.id >= 0 && a.id < len(l.accounts) && l.accounts[a.id] == a
}

// Transfer 將 amount 由 from 移至 to：
//  1. 參數檢核（不取任何鎖）：金額 >= 0、兩帳戶皆屬於本 Ledger。
//  2. from 與 to 相同 → 直接返回 OutcomeSameAccount。
//  3. 先鎖 id 較小者、再鎖 id 較大者；兩個 Unlock 皆以 defer 保證於任何路徑釋放。
//  4. 持有兩把鎖後才檢查餘額：足夠則扣款與入帳，否則不做任何變更。
//
// 餘額不足是預期結果而非錯誤：回傳 OutcomeInsufficientFunds 與 nil。
// 回傳錯誤時未取任何鎖、未改變任何餘額，Outcome 為 OutcomeInvalid。
func (l *Ledger) Transfer(from, to *Account, amount int64) (Outcome, error) {
	if amount < 0 {
		return OutcomeInvalid, ErrBadAmount
	}
	if !l.owns(from) || !l.owns(to) {
		return OutcomeInvalid, ErrNotFound
	}
	if from.id == to.id {
		return OutcomeSameAccount, nil
	}

	first, second := from, to
	if second.id < first.id {
		first, second = second, first
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if from.balance < amount {
		return OutcomeInsufficientFunds, nil
	}
	from.balance -= amount
	to.balance += amount
	return OutcomeApplied, nil
}

// TotalBalance 依 id 由小到大逐一鎖定帳戶並累加餘額；同一時間只持有一把鎖。
//
// 注意：這不是全域原子快照。並發轉帳可能在兩次讀取之間完成，
// 使結果短暫多算或少算一筆轉帳金額。只有在靜止狀態（沒有進行中的轉帳，
// 例如所有工作者結束之後）呼叫時，回傳值才等於守恆的總額。
func (l *Ledger) TotalBalance() int64 {
	var total int64
	for _, a := range l.accounts {
		total += a.Balance()
	}
	return total
}

// Balances 回傳各帳戶餘額（索引即 id），讀取方式與 TotalBalance 相同，
// 同樣只在靜止狀態下構成一致的稽核視圖。
func (l *Ledger) Balances() []int64 {
	out := make([]int64, len(l.accounts))
	for i, a := range l.accounts {
		out[i] = a.Balance()
	}
	return out
}
