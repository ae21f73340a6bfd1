package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathway-notify/internal/config"
	"pathway-notify/internal/models"
)

func setupKeyDB(t *testing.T) (*miniredis.Miniredis, *KeyDBService) {
	t.Helper()
	mr := miniredis.RunT(t)

	svc, err := NewKeyDBService(&config.Config{
		KeyDBURL:       mr.Addr(),
		KeyDBStatusTTL: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	return mr, svc
}

func TestKeyDBService_SetAndGetStatus(t *testing.T) {
	mr, svc := setupKeyDB(t)
	ctx := context.Background()

	err := svc.SetStatus(ctx, "batch-1", models.Outcome{
		Index:      2,
		Kind:       models.OutcomeSent,
		SendTo:     "a@x.com",
		StatusCode: 202,
	})
	require.NoError(t, err)

	assert.True(t, mr.Exists("notify:status:batch-1:2"))
	assert.Equal(t, time.Hour, mr.TTL("notify:status:batch-1:2"))

	status, err := svc.GetStatus(ctx, "batch-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", status.BatchID)
	assert.Equal(t, 2, status.Index)
	assert.Equal(t, "sent", status.Status)
	assert.Equal(t, 202, status.StatusCode)
	assert.Equal(t, "a@x.com", status.SendTo)
	assert.NotEmpty(t, status.LastUpdated)
}

func TestKeyDBService_GetStatusNotFound(t *testing.T) {
	_, svc := setupKeyDB(t)

	_, err := svc.GetStatus(context.Background(), "batch-1", 0)
	assert.EqualError(t, err, "status not found")
}

func TestNewKeyDBService_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewKeyDBService(&config.Config{KeyDBURL: addr})
	assert.ErrorContains(t, err, "failed to connect to KeyDB")
}
