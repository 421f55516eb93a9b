package relay_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"anonpair/backend/internal/match"
	"anonpair/backend/internal/mediagroup"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/relay"
	"anonpair/backend/internal/storage"
)

const (
	userA int64 = 111
	userB int64 = 222
)

func newRelay(t *testing.T, transport *MockTransport) (*relay.Relay, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	engine := match.NewEngine(store)
	media := mediagroup.NewAggregator(store, transport, time.Hour)
	require.NoError(t, engine.StartSession(userA, userB))
	return relay.New(store, transport, engine, media, []string{"spam", "scam"}), store
}

func TestForwardMessageDelivers(t *testing.T) {
	transport := new(MockTransport)
	r, store := newRelay(t, transport)

	transport.On("CopyMessage", userB, userA, 10, 0).Return(20, nil).Once()

	res := r.ForwardMessage(models.Message{MessageID: 10, From: userA, Text: "hello"})
	assert.Equal(t, relay.Delivered, res.Status)
	assert.Equal(t, userB, res.Partner)
	transport.AssertExpectations(t)

	copyID, found, err := store.FindReceiverMsgID(userA, 10)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 20, copyID)
}

func TestForwardMessageWithoutPartner(t *testing.T) {
	transport := new(MockTransport)
	store := storage.NewMemory()
	engine := match.NewEngine(store)
	media := mediagroup.NewAggregator(store, transport, time.Hour)
	r := relay.New(store, transport, engine, media, nil)

	res := r.ForwardMessage(models.Message{MessageID: 1, From: 999, Text: "hi"})
	assert.Equal(t, relay.NotInChat, res.Status)
	transport.AssertNotCalled(t, "CopyMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestForwardMessageSuppressesBannedTerms(t *testing.T) {
	transport := new(MockTransport)
	r, store := newRelay(t, transport)

	res := r.ForwardMessage(models.Message{MessageID: 10, From: userA, Text: "Buy now, no SCAM here"})
	assert.Equal(t, relay.BlockedContent, res.Status)
	transport.AssertNotCalled(t, "CopyMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Suppressed messages leave no link behind.
	_, found, err := store.FindReceiverMsgID(userA, 10)
	require.NoError(t, err)
	assert.False(t, found)
}

// A reply to a message the sender wrote threads onto its delivered copy;
// a reply to a delivered copy threads onto the partner's original.
func TestReplyThreadingRoundTrip(t *testing.T) {
	transport := new(MockTransport)
	r, _ := newRelay(t, transport)

	transport.On("CopyMessage", userB, userA, 10, 0).Return(20, nil).Once()
	res := r.ForwardMessage(models.Message{MessageID: 10, From: userA, Text: "first"})
	require.Equal(t, relay.Delivered, res.Status)

	// B replies to the copy (ID 20 on B's side) -> A sees a reply to 10.
	transport.On("CopyMessage", userA, userB, 30, 10).Return(40, nil).Once()
	res = r.ForwardMessage(models.Message{MessageID: 30, From: userB, Text: "back at you", ReplyToID: 20})
	require.Equal(t, relay.Delivered, res.Status)

	// A replies to their own original 10 -> B sees a reply to the copy 20.
	transport.On("CopyMessage", userB, userA, 50, 20).Return(60, nil).Once()
	res = r.ForwardMessage(models.Message{MessageID: 50, From: userA, Text: "again", ReplyToID: 10})
	require.Equal(t, relay.Delivered, res.Status)

	transport.AssertExpectations(t)
}

func TestReplyToUnknownMessageDropsThread(t *testing.T) {
	transport := new(MockTransport)
	r, _ := newRelay(t, transport)

	transport.On("CopyMessage", userB, userA, 7, 0).Return(8, nil).Once()
	res := r.ForwardMessage(models.Message{MessageID: 7, From: userA, Text: "x", ReplyToID: 12345})
	assert.Equal(t, relay.Delivered, res.Status)
	transport.AssertExpectations(t)
}

func TestDeliveryFailureEndsSession(t *testing.T) {
	transport := new(MockTransport)
	r, _ := newRelay(t, transport)

	transport.On("CopyMessage", userB, userA, 10, 0).Return(0, errors.New("forbidden: bot was blocked")).Once()

	res := r.ForwardMessage(models.Message{MessageID: 10, From: userA, Text: "anyone there"})
	assert.Equal(t, relay.PartnerGone, res.Status)
	assert.Equal(t, userB, res.Partner)

	res = r.ForwardMessage(models.Message{MessageID: 11, From: userA, Text: "hello?"})
	assert.Equal(t, relay.NotInChat, res.Status)
}

func TestAlbumPartsAreBuffered(t *testing.T) {
	transport := new(MockTransport)
	r, _ := newRelay(t, transport)

	part := models.MediaPart{MessageID: 5, Kind: "photo", FileID: "f1"}
	res := r.ForwardMessage(models.Message{MessageID: 5, From: userA, MediaGroupID: "g1", Part: &part})
	assert.Equal(t, relay.Buffered, res.Status)
	transport.AssertNotCalled(t, "SendMediaGroup", mock.Anything, mock.Anything)
}

func TestForwardEdit(t *testing.T) {
	transport := new(MockTransport)
	r, store := newRelay(t, transport)

	require.NoError(t, store.LogMessage(userA, 10, userB, 20))
	transport.On("EditText", userB, 20, "fixed").Return(nil).Once()

	r.ForwardEdit(userA, 10, "fixed")
	transport.AssertExpectations(t)

	// No link -> silent no-op.
	r.ForwardEdit(userA, 999, "nothing")
	transport.AssertNumberOfCalls(t, "EditText", 1)
}

func TestForwardDelete(t *testing.T) {
	transport := new(MockTransport)
	r, store := newRelay(t, transport)

	assert.ErrorIs(t, r.ForwardDelete(userA, 10), relay.ErrNoLink)

	require.NoError(t, store.LogMessage(userA, 10, userB, 20))
	transport.On("DeleteMessage", userB, 20).Return(nil).Once()
	assert.NoError(t, r.ForwardDelete(userA, 10))
	transport.AssertExpectations(t)
}
