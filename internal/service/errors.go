package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/lib/pq"
)

// ErrNoData is returned when the latest snapshot has no rows
var ErrNoData = errors.New("no bulletin data")

// Messages shown to users for each failure class
const (
	MsgNetwork    = "网络连接失败，请检查网络连接后重试"
	MsgTimeout    = "请求超时，服务器响应缓慢，请稍后重试"
	MsgPermission = "数据访问权限不足，请刷新页面重试"
	MsgNoTable    = "数据表不存在，系统可能正在维护中"
	MsgNoColumn   = "数据结构异常，请联系技术支持"
	MsgNoFunction = "系统功能异常，请稍后重试"
	MsgQuery      = "数据库查询失败，请稍后重试或联系技术支持"
	MsgNoData     = "暂无排期数据，请稍后重试"
	MsgGeneric    = "数据加载失败，请稍后重试或刷新页面"
	MsgUnknown    = "未知错误"
)

// UserMessage maps a failure to the text shown to users
func UserMessage(err error) string {
	if err == nil {
		return MsgUnknown
	}
	if errors.Is(err, ErrNoData) {
		return MsgNoData
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "undefined_table":
			return MsgNoTable
		case "undefined_column":
			return MsgNoColumn
		case "undefined_function":
			return MsgNoFunction
		case "insufficient_privilege":
			return MsgPermission
		case "query_canceled":
			return MsgTimeout
		}
		if pqErr.Code.Class() == "08" {
			return MsgNetwork
		}
		return MsgQuery
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return MsgTimeout
		}
		return MsgNetwork
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return MsgNetwork
	}
	if strings.Contains(err.Error(), "timeout") {
		return MsgTimeout
	}

	return MsgGeneric
}

// isTransient reports whether retrying the same query may succeed
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57": // connection, resources, operator intervention
			return true
		}
		return pqErr.Code.Name() == "serialization_failure" || pqErr.Code.Name() == "deadlock_detected"
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
