// internal/ring/errors.go

package ring

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 為參數錯誤的共同類別。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBadCapacity 代表容量 <= 0。
	ErrBadCapacity = fmt.Errorf("%w: capacity must be > 0", ErrInvalidArgument)

	// ErrCancelled 代表 Push/Pop 在等待期間因 context 結束而放棄；緩衝區狀態未被修改。
	// 回傳的錯誤同時包裹 ctx.Err()，可用 errors.Is 判斷 context.Canceled 或 DeadlineExceeded。
	ErrCancelled = errors.New("ring: wait cancelled")
)

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
