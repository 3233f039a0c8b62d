// internal/bank/errors.go
//
// 本檔集中定義 bank 套件的「參數錯誤」。
// 餘額不足與同帳戶轉帳屬於預期結果（Outcome），不是錯誤，因此不在此列。
// 所有錯誤皆包裹 ErrInvalidArgument，呼叫端可用 errors.Is 一次判斷錯誤類別。

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 為所有參數錯誤的共同類別。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound 代表帳戶不存在，或帳戶不屬於此 Ledger（含 nil）。
	ErrNotFound = fmt.Errorf("%w: account not found", ErrInvalidArgument)

	// ErrBadAmount 代表金額或初始餘額為負。
	ErrBadAmount = fmt.Errorf("%w: amount must be >= 0", ErrInvalidArgument)

	// ErrBadAccountCount 代表建立 Ledger 時帳戶數量 <= 0。
	ErrBadAccountCount = fmt.Errorf("%w: account count must be > 0", ErrInvalidArgument)
)
