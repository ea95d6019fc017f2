package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
	sqliteplatform "referral-miniapp-backend/internal/platform/sqlite"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) repository.UserRepository {
	t.Helper()
	ctx := context.Background()

	client, err := sqliteplatform.NewClient(ctx, ":memory:")
	require.NoError(t, err)

	repo, err := NewUserRepository(ctx, client.GetDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newUser(id int64, username string) *models.User {
	return &models.User{
		ID:         id,
		Username:   username,
		FirstName:  "First",
		IsOnline:   true,
		LastSeenAt: now,
		CreatedAt:  now,
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client, err := sqliteplatform.NewClient(ctx, ":memory:")
	require.NoError(t, err)
	defer client.Close()

	_, err = NewUserRepository(ctx, client.GetDB())
	require.NoError(t, err)
	_, err = NewUserRepository(ctx, client.GetDB())
	require.NoError(t, err)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, linked, err := repo.CreateWithReferral(ctx, newUser(555, "alice"), 0, 2500)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, linked)

	created, _, err = repo.CreateWithReferral(ctx, newUser(555, "renamed"), 0, 2500)
	require.NoError(t, err)
	assert.False(t, created)

	user, err := repo.GetByID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, int64(0), user.Points)
	assert.Empty(t, user.InvitedUsers)
	assert.Empty(t, user.ClaimedTaskIDs)
	assert.True(t, user.IsOnline)
	assert.True(t, user.CreatedAt.Equal(now))
}

func TestCreateWithInviter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, _, err := repo.CreateWithReferral(ctx, newUser(555, "alice"), 0, 2500)
	require.NoError(t, err)

	invitee := newUser(600, "")
	invitee.InvitedBy = "@alice"
	invitee.InvitedByID = 555
	created, linked, err := repo.CreateWithReferral(ctx, invitee, 555, 2500)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, linked)

	inviter, err := repo.GetByID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, []string{"@600"}, inviter.InvitedUsers)
	assert.Equal(t, int64(2500), inviter.Points)

	got, err := repo.GetByID(ctx, 600)
	require.NoError(t, err)
	assert.Equal(t, "@alice", got.InvitedBy)
	assert.Equal(t, int64(555), got.InvitedByID)
}

func TestCreateWithMissingInviterStaysUnlinked(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	invitee := newUser(600, "bob")
	invitee.InvitedBy = "@ghost"
	invitee.InvitedByID = 999
	created, linked, err := repo.CreateWithReferral(ctx, invitee, 999, 2500)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, linked)

	got, err := repo.GetByID(ctx, 600)
	require.NoError(t, err)
	assert.Empty(t, got.InvitedBy)
	assert.Zero(t, got.InvitedByID)
}

func TestTouch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.ErrorIs(t, repo.Touch(ctx, 1, now), repository.ErrNotFound)

	user := newUser(1, "alice")
	user.IsOnline = false
	_, _, err := repo.CreateWithReferral(ctx, user, 0, 0)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	require.NoError(t, repo.Touch(ctx, 1, later))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsOnline)
	assert.True(t, got.LastSeenAt.Equal(later))
}

func TestClaimTask(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	grant := models.TaskGrant{TaskID: "invite_3_friends", RequiredInvites: 3, Reward: 5}

	_, err := repo.ClaimTask(ctx, 555, grant, now)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, _, err = repo.CreateWithReferral(ctx, newUser(555, "alice"), 0, 2500)
	require.NoError(t, err)
	for _, id := range []int64{601, 602} {
		_, linked, err := repo.CreateWithReferral(ctx, newUser(id, ""), 555, 2500)
		require.NoError(t, err)
		require.True(t, linked)
	}

	res, err := repo.ClaimTask(ctx, 555, grant, now)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimNotEligible, res.Outcome)
	assert.Equal(t, 2, res.InviteCount)
	assert.Equal(t, int64(5000), res.Points)

	_, _, err = repo.CreateWithReferral(ctx, newUser(603, "carol"), 555, 2500)
	require.NoError(t, err)

	res, err = repo.ClaimTask(ctx, 555, grant, now)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimDone, res.Outcome)
	assert.Equal(t, int64(7505), res.Points)
	assert.Equal(t, 3, res.InviteCount)

	res, err = repo.ClaimTask(ctx, 555, grant, now)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimAlreadyDone, res.Outcome)
	assert.Equal(t, int64(7505), res.Points)

	user, err := repo.GetByID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, []string{"invite_3_friends"}, user.ClaimedTaskIDs)
	assert.Equal(t, []string{"@601", "@602", "@carol"}, user.InvitedUsers)
}

func TestClaimTaskConcurrent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	grant := models.TaskGrant{TaskID: "invite_1_friend", RequiredInvites: 1, Reward: 1}

	_, _, err := repo.CreateWithReferral(ctx, newUser(7, "dave"), 0, 2500)
	require.NoError(t, err)
	_, _, err = repo.CreateWithReferral(ctx, newUser(8, ""), 7, 2500)
	require.NoError(t, err)

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[models.ClaimOutcome]int{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.ClaimTask(ctx, 7, grant, now)
			assert.NoError(t, err)
			mu.Lock()
			outcomes[res.Outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[models.ClaimDone])
	assert.Equal(t, n-1, outcomes[models.ClaimAlreadyDone])

	user, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2501), user.Points)
}

func TestAppendPaymentIdentifierAndPayoutRequest(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.AppendPaymentIdentifier(ctx, 555, "alice@upi")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "x"}, false)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, _, err = repo.CreateWithReferral(ctx, newUser(555, "alice"), 0, 2500)
	require.NoError(t, err)

	ids, err := repo.AppendPaymentIdentifier(ctx, 555, "alice@upi")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@upi"}, ids)
	ids, err = repo.AppendPaymentIdentifier(ctx, 555, "alice@upi")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@upi", "alice@upi"}, ids)

	n, err := repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "r1", PaymentIdentifier: "alice@upi", RequestedAt: now}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "r2", PaymentIdentifier: "alice@upi", RequestedAt: now}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	user, err := repo.GetByID(ctx, 555)
	require.NoError(t, err)
	require.Len(t, user.PayoutRequests, 2)
	assert.Equal(t, "r1", user.PayoutRequests[0].ID)
	assert.True(t, user.PayoutRequests[1].RequestedAt.Equal(now))
}

func TestAppendPayoutRequestWithIdentifier(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "x", PaymentIdentifier: "alice"}, true)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, _, err = repo.CreateWithReferral(ctx, newUser(555, "alice"), 0, 2500)
	require.NoError(t, err)

	n, err := repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "r1", PaymentIdentifier: "9876543210", RequestedAt: now}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// повтор id заявки нарушает UNIQUE: откатывается и сохранение идентификатора
	_, err = repo.AppendPayoutRequest(ctx, 555, models.PayoutRequest{ID: "r1", PaymentIdentifier: "alice@upi", RequestedAt: now}, true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	user, err := repo.GetByID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, []string{"9876543210"}, user.PaymentIdentifiers)
	require.Len(t, user.PayoutRequests, 1)
	assert.Equal(t, "9876543210", user.PayoutRequests[0].PaymentIdentifier)
}

func TestPing(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Ping(context.Background()))
}
