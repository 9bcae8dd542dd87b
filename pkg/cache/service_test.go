package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type availabilityEntry struct {
	TicketTypeID string `json:"ticket_type_id"`
	Remaining    int    `json:"remaining"`
}

func TestGetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	entry := availabilityEntry{TicketTypeID: "tt-1", Remaining: 42}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectGet("tickethub:availability:event:e-1").SetVal(string(raw))

	var got availabilityEntry
	err = svc.Get(context.Background(), "tickethub:availability:event:e-1", &got)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("missing").RedisNil()

	var got availabilityEntry
	err := svc.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	entry := availabilityEntry{TicketTypeID: "tt-1", Remaining: 7}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectSet("k", raw, 30*time.Second).SetVal("OK")

	err = svc.Set(context.Background(), "k", entry, 30*time.Second)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectDel("k").SetVal(1)

	require.NoError(t, svc.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetFetchesOnMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	entry := availabilityEntry{TicketTypeID: "tt-9", Remaining: 3}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectGet("k").RedisNil()
	mock.ExpectSet("k", raw, time.Minute).SetVal("OK")

	fetched := false
	var got availabilityEntry
	err = svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		fetched = true
		return entry, nil
	}, &got)

	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, entry, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetSkipsFetcherOnHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	entry := availabilityEntry{TicketTypeID: "tt-9", Remaining: 3}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectGet("k").SetVal(string(raw))

	var got availabilityEntry
	err = svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		t.Fatal("fetcher must not run on a cache hit")
		return nil, nil
	}, &got)

	require.NoError(t, err)
	assert.Equal(t, entry, got)
}
