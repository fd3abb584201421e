package conversation

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises behavior every Store must share.
func storeContract(t *testing.T, newStore func(maxTurns int) Store) {
	ctx := context.Background()

	t.Run("append and recent", func(t *testing.T) {
		s := newStore(0)
		sid := uuid.NewString()
		t.Cleanup(func() { _ = s.Clear(ctx, sid) })
		turn := model("Đây là máy ảnh")
		turn.Products = []*models.ProductCandidate{{ID: "p1", Title: "Máy ảnh Canon", BasePrice: 300000}}
		require.NoError(t, s.Append(ctx, sid, user("máy ảnh"), turn))
		require.NoError(t, s.Append(ctx, sid, user("rẻ nhất")))

		all, err := s.Recent(ctx, sid, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, models.RoleUser, all[0].Role)
		assert.Equal(t, "p1", all[1].Products[0].ID)
		assert.Equal(t, "rẻ nhất", all[2].Content)

		last, err := s.Recent(ctx, sid, 2)
		require.NoError(t, err)
		require.Len(t, last, 2)
		assert.Equal(t, models.RoleModel, last[0].Role)
	})

	t.Run("max turns", func(t *testing.T) {
		s := newStore(3)
		sid := uuid.NewString()
		t.Cleanup(func() { _ = s.Clear(ctx, sid) })
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Append(ctx, sid, user(fmt.Sprintf("m%d", i))))
		}
		got, err := s.Recent(ctx, sid, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "m2", got[0].Content)
		assert.Equal(t, "m4", got[2].Content)
	})

	t.Run("unknown and cleared sessions are empty", func(t *testing.T) {
		s := newStore(0)
		sid := uuid.NewString()
		got, err := s.Recent(ctx, sid, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, s.Append(ctx, sid, user("x")))
		require.NoError(t, s.Clear(ctx, sid))
		got, err = s.Recent(ctx, sid, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(maxTurns int) Store { return NewMemoryStore(maxTurns) })
}

func TestMemoryStore_RecentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	require.NoError(t, s.Append(ctx, "s", user("a")))
	got, _ := s.Recent(ctx, "s", 0)
	got[0].Content = "mutated"
	again, _ := s.Recent(ctx, "s", 0)
	assert.Equal(t, "a", again[0].Content)
}

// TestRedisStore runs against a real server when RENTASSIST_TEST_REDIS is set,
// e.g. RENTASSIST_TEST_REDIS=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RENTASSIST_TEST_REDIS")
	if addr == "" {
		t.Skip("RENTASSIST_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := DialRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	storeContract(t, func(maxTurns int) Store { return NewRedisStore(rdb, time.Minute, maxTurns) })

	sid := uuid.NewString()
	s := NewRedisStore(rdb, time.Minute, 0)
	require.NoError(t, s.Append(context.Background(), sid, user("x")))
	ttl, err := rdb.TTL(context.Background(), sessionKey(sid)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	_ = s.Clear(context.Background(), sid)
}

func TestDialRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
