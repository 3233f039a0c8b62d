// internal/bank/outcome.go

package bank

// Outcome 描述一次 Transfer 的結果。除 OutcomeInvalid 外皆為正常返回，非錯誤。
type Outcome int

const (
	// OutcomeInvalid 為零值，只伴隨參數錯誤回傳，不代表任何轉帳結果。
	OutcomeInvalid Outcome = iota
	// OutcomeApplied 表示金額已由來源帳戶移至目標帳戶。
	OutcomeApplied
	// OutcomeInsufficientFunds 表示來源餘額不足，未做任何變更。
	OutcomeInsufficientFunds
	// OutcomeSameAccount 表示來源與目標相同，未取鎖即返回。
	OutcomeSameAccount
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeApplied:
		return "applied"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeSameAccount:
		return "same_account"
	default:
		return "unknown"
	}
}
