// Package safe_close 管理后台协程的关闭生命周期
package safe_close

import (
	"sync"
)

// SafeClose 协调多个后台协程的统一关闭
// 每个协程通过 Attach 挂载，收到关闭信号后调用 done 退出
type SafeClose struct {
	mu          sync.Mutex
	wg          sync.WaitGroup
	closeSignal chan struct{}
	closeOnce   sync.Once

	errOnce sync.Once
	err     error
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 挂载一个后台协程
// f 必须在退出前调用 done，并监听 closeSignal
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := func() {
		s.wg.Done()
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal 发出关闭信号，可携带首个致命错误
func (s *SafeClose) SendCloseSignal(err error) {
	if err != nil {
		s.errOnce.Do(func() {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		})
	}
	s.closeOnce.Do(func() {
		close(s.closeSignal)
	})
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 阻塞直到所有挂载的协程退出，返回首个错误
func (s *SafeClose) WaitClosed() error {
	<-s.closeSignal
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
