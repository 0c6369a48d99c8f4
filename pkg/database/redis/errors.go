package redis

import "errors"

var (
	ErrInvalidConfig = errors.New("redis: invalid config")
	// ErrNil 键不存在
	ErrNil = errors.New("redis: nil")
	// ErrLockFailed 获取锁失败
	ErrLockFailed = errors.New("redis: failed to acquire lock")
	// ErrLockNotHeld 解锁时锁已过期或被他人持有
	ErrLockNotHeld = errors.New("redis: lock not held")
)
