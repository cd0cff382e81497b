package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, MsgUnknown},
		{"no data", fmt.Errorf("latest: %w", ErrNoData), MsgNoData},
		{"deadline", context.DeadlineExceeded, MsgTimeout},
		{"undefined table", &pq.Error{Code: "42P01"}, MsgNoTable},
		{"undefined column", &pq.Error{Code: "42703"}, MsgNoColumn},
		{"undefined function", &pq.Error{Code: "42883"}, MsgNoFunction},
		{"permission", &pq.Error{Code: "42501"}, MsgPermission},
		{"connection class", &pq.Error{Code: "08006"}, MsgNetwork},
		{"other pq", fmt.Errorf("query: %w", &pq.Error{Code: "22P02"}), MsgQuery},
		{"net timeout", timeoutErr{}, MsgTimeout},
		{"net refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, MsgNetwork},
		{"bad conn", driver.ErrBadConn, MsgNetwork},
		{"other", errors.New("boom"), MsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(driver.ErrBadConn))
	assert.True(t, isTransient(&pq.Error{Code: "57P01"}))
	assert.True(t, isTransient(&pq.Error{Code: "40001"}))
	assert.True(t, isTransient(timeoutErr{}))
	assert.False(t, isTransient(&pq.Error{Code: "42P01"}))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(errors.New("boom")))
	assert.False(t, isTransient(nil))
}
