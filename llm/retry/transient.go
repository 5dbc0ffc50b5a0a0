package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsTransient 判定传输层错误是否在允许重试的名单内：超时、DNS 解析失败、
// 连接被重置或拒绝、主机/网络不可达、连接中途断开。
//
// 调用方主动取消（context.Canceled）不是瞬时故障，重试它只会对抗调用方
// 的意图；超时（context.DeadlineExceeded 及 net.Error 超时）则在名单内。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	for _, target := range []error{
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.EPIPE,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	// 服务端在响应途中掐断连接。
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	return false
}
