package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowfit-backend/internal/models"
)

const testSessionID = "1b4e28ba-2fa1-4d3b-a3f5-ef19b5a7633b"

func TestRedisStore_Create(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	mock.CustomMatch(func(expected, actual []interface{}) error {
		key, _ := actual[1].(string)
		if !strings.HasPrefix(key, redisKeyPrefix) {
			return errors.New("unexpected key " + key)
		}
		return nil
	}).ExpectSetNX("any", "any", time.Hour).SetVal(true)

	st, err := store.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, models.PageHome, st.Page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	stored := New(testSessionID, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	stored.Routine = pushUpRoutine()
	stored.Tracking["Push-up"] = 2
	data, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectGet(redisKey(testSessionID)).SetVal(string(data))
	mock.ExpectExpire(redisKey(testSessionID), time.Hour).SetVal(true)

	st, err := store.Get(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Tracking["Push-up"])
	require.Len(t, st.Routine, 1)
	assert.NotNil(t, st.Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GetSurvivesTTLRefreshFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	data, err := json.Marshal(New(testSessionID, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	mock.ExpectGet(redisKey(testSessionID)).SetVal(string(data))
	mock.ExpectExpire(redisKey(testSessionID), time.Hour).SetErr(errors.New("connection reset"))

	st, err := store.Get(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Equal(t, testSessionID, st.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	mock.ExpectGet(redisKey(testSessionID)).RedisNil()

	_, err := store.Get(context.Background(), testSessionID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GetCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	mock.ExpectGet(redisKey(testSessionID)).SetVal("{not json")
	mock.ExpectExpire(redisKey(testSessionID), time.Hour).SetVal(true)

	_, err := store.Get(context.Background(), testSessionID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	store := NewRedisStore(db, time.Hour)

	mock.ExpectDel(redisKey(testSessionID)).SetVal(1)
	mock.ExpectDel(redisKey(testSessionID)).SetVal(0)

	require.NoError(t, store.Delete(context.Background(), testSessionID))
	assert.ErrorIs(t, store.Delete(context.Background(), testSessionID), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
