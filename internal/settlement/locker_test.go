package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func TestRedisLocker_TryLock(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(m *MockredisCmdable)
		wantOK      bool
		wantErr     bool
	}{
		{
			name: "Lock acquired and released",
			prepareMock: func(m *MockredisCmdable) {
				m.EXPECT().SetNX(gomock.Any(), "settlement:provider:7", gomock.Any(), time.Minute).
					Return(redis.NewBoolResult(true, nil))
				m.EXPECT().Eval(gomock.Any(), releaseScript, []string{"settlement:provider:7"}, gomock.Any()).
					Return(redis.NewCmdResult(int64(1), nil))
			},
			wantOK: true,
		},
		{
			name: "Held by another instance",
			prepareMock: func(m *MockredisCmdable) {
				m.EXPECT().SetNX(gomock.Any(), "settlement:provider:7", gomock.Any(), time.Minute).
					Return(redis.NewBoolResult(false, nil))
			},
		},
		{
			name: "Redis unavailable",
			prepareMock: func(m *MockredisCmdable) {
				m.EXPECT().SetNX(gomock.Any(), "settlement:provider:7", gomock.Any(), time.Minute).
					Return(redis.NewBoolResult(false, errors.New("connection refused")))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb := NewMockredisCmdable(gomock.NewController(t))
			tt.prepareMock(rdb)
			locker := &RedisLocker{rdb: rdb}

			release, ok, err := locker.TryLock(context.Background(), "settlement:provider:7", time.Minute)

			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				release()
			}
		})
	}
}

func TestRedisLocker_ReleaseUsesOwnToken(t *testing.T) {
	rdb := NewMockredisCmdable(gomock.NewController(t))
	var token interface{}
	rdb.EXPECT().SetNX(gomock.Any(), "k", gomock.Any(), time.Second).
		DoAndReturn(func(_ context.Context, _ string, value interface{}, _ time.Duration) *redis.BoolCmd {
			token = value
			return redis.NewBoolResult(true, nil)
		})
	rdb.EXPECT().Eval(gomock.Any(), releaseScript, []string{"k"}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []string, args ...interface{}) *redis.Cmd {
			require.Len(t, args, 1)
			assert.Equal(t, token, args[0])
			return redis.NewCmdResult(int64(1), nil)
		})

	release, ok, err := (&RedisLocker{rdb: rdb}).TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	release()
}

func TestNopLocker(t *testing.T) {
	release, ok, err := NopLocker{}.TryLock(context.Background(), "k", time.Second)
	assert.NoError(t, err)
	assert.True(t, ok)
	release()
}
