// internal/ring/channel.go

// Package ring 提供固定容量、阻塞式的 FIFO 環形緩衝區 Channel[T]。
//
// 整個緩衝區（items、head、tail、count）由單一互斥鎖保護，Push 與 Pop 彼此原子。
// 滿時 Push 等待「有空位」、空時 Pop 等待「有資料」；兩個條件都以可 select 的廣播
// channel 實作（close 即喚醒全部等待者，再換上新的 channel），因此等待可同時監聽
// ctx.Done()，取消時放棄等待並回傳 ErrCancelled，不會寫入或取出半個元素。
// 被喚醒後一律重新檢查條件（迴圈等待），不假設喚醒即代表條件成立。
package ring

import (
	"context"

	"lockstep/internal/syncutil"
)

// Channel 為有界 FIFO 環形緩衝區，可供任意數量的生產者與消費者並發使用。
type Channel[T any] struct {
	mu    syncutil.Mutex
	items []T // 固定長度 = 容量
	head  int // 下一個讀取位置
	tail  int // 下一個寫入位置
	count int // 0 <= count <= len(items)

	spaceAvailable chan struct{} // count < cap 時廣播
	itemAvailable  chan struct{} // count > 0 時廣播
	pushWaiters    int
	popWaiters     int
}

// New 建立容量為 capacity 的 Channel；capacity 必須 > 0。
func New[T any](capacity int) (*Channel[T], error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}
	return &Channel[T]{
		items:          make([]T, capacity),
		spaceAvailable: make(chan struct{}),
		itemAvailable:  make(chan struct{}),
	}, nil
}

// Push 將 item 寫入尾端；緩衝區已滿時阻塞直到有空位或 ctx 結束。
// 不需等待的呼叫即使 ctx 已結束也會完成。
func (c *Channel[T]) Push(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.await(ctx, c.full, &c.spaceAvailable, &c.pushWaiters); err != nil {
		return err
	}
	c.items[c.tail] = item
	c.tail = (c.tail + 1) % len(c.items)
	c.count++
	if c.popWaiters > 0 {
		broadcast(&c.itemAvailable)
	}
	return nil
}

// Pop 取出並回傳最前端的元素；緩衝區為空時阻塞直到有資料或 ctx 結束。
func (c *Channel[T]) Pop(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if err := c.await(ctx, c.empty, &c.itemAvailable, &c.popWaiters); err != nil {
		return zero, err
	}
	item := c.items[c.head]
	c.items[c.head] = zero // 釋放參考
	c.head = (c.head + 1) % len(c.items)
	c.count--
	if c.pushWaiters > 0 {
		broadcast(&c.spaceAvailable)
	}
	return item, nil
}

// Len 回傳目前緩衝的元素數量。
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Cap 回傳固定容量。
func (c *Channel[T]) Cap() int { return len(c.items) }

func (c *Channel[T]) full() bool  { return c.count == len(c.items) }
func (c *Channel[T]) empty() bool { return c.count == 0 }

// await 在 blocked() 成立期間等待 cond 的廣播或 ctx 結束。
// 呼叫與返回時皆持有 c.mu；等待期間釋放鎖。
func (c *Channel[T]) await(ctx context.Context, blocked func() bool, cond *chan struct{}, waiters *int) error {
	for blocked() {
		wake := *cond
		*waiters++
		c.mu.Unlock()

		var err error
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-wake:
		}

		c.mu.Lock()
		*waiters--
		if err != nil {
			return cancelled(err)
		}
	}
	return nil
}

// broadcast 喚醒所有等待 *cond 的 goroutine，並換上新的條件 channel。須持有 c.mu。
func broadcast(cond *chan struct{}) {
	close(*cond)
	*cond = make(chan struct{})
}
