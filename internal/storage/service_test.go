package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"anonpair/backend/internal/storage"
)

func newSQLiteService(t *testing.T) *storage.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s, err := storage.NewService(db)
	require.NoError(t, err)
	return s
}

func TestServiceQueueClaim(t *testing.T) {
	s := newSQLiteService(t)

	require.NoError(t, s.AddToQueue(1, "Tech"))
	require.NoError(t, s.AddToQueue(2, "Tech"))
	require.NoError(t, s.BlockUser(9, 1))

	// 9 blocks 1, so the claim lands on 2 even though 1 queued first.
	partnerID, ok, err := s.ClaimFromQueue(9, "Tech")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), partnerID)

	queued, err := s.IsInQueue(2)
	require.NoError(t, err)
	assert.False(t, queued, "claimed entry must be removed")

	// Only the blocked candidate remains.
	_, ok, err = s.ClaimFromQueue(9, "Tech")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceQueueAddKeepsOriginalEntry(t *testing.T) {
	s := newSQLiteService(t)

	require.NoError(t, s.AddToQueue(1, "Anime"))
	require.NoError(t, s.AddToQueue(1, "Tech"))

	// The second insert must not overwrite the first entry's interest.
	partnerID, ok, err := s.ClaimFromQueue(9, "Anime")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), partnerID)
}

func TestServiceSessions(t *testing.T) {
	s := newSQLiteService(t)

	require.NoError(t, s.CreateChat(1, 2))

	partnerID, ok, err := s.GetPartner(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), partnerID)

	partnerID, ok, err = s.EndChat(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), partnerID)

	_, ok, err = s.GetPartner(2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceMessageLinks(t *testing.T) {
	s := newSQLiteService(t)

	require.NoError(t, s.LogMessage(1, 10, 2, 20))

	copyID, found, err := s.FindReceiverMsgID(1, 10)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 20, copyID)

	originalID, found, err := s.FindSenderMsgID(2, 20)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, originalID)
}

func TestServiceSettingsUpsert(t *testing.T) {
	s := newSQLiteService(t)

	lang, err := s.GetLanguage(5)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	require.NoError(t, s.SetInterest(5, "Movies"))
	require.NoError(t, s.SetLanguage(5, "si"))

	interest, err := s.GetInterest(5)
	require.NoError(t, err)
	assert.Equal(t, "Movies", interest)
	lang, err = s.GetLanguage(5)
	require.NoError(t, err)
	assert.Equal(t, "si", lang)

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, users)
}

func TestServiceStatsAndReports(t *testing.T) {
	s := newSQLiteService(t)

	require.NoError(t, s.SetLanguage(1, "en"))
	require.NoError(t, s.SetLanguage(2, "en"))
	require.NoError(t, s.CreateChat(1, 2))
	require.NoError(t, s.AddToQueue(3, ""))
	require.NoError(t, s.SaveReport(1, 2, "Spam"))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveChats)
	assert.Equal(t, int64(1), stats.InQueue)

	reports, err := s.ListReports(10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Spam", reports[0].Reason)
}
