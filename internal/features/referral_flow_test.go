package features_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	go_redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-miniapp-backend/internal/common/metrics"
	payoutservice "referral-miniapp-backend/internal/features/payout/service"
	taskservice "referral-miniapp-backend/internal/features/task/service"
	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
	redisrepo "referral-miniapp-backend/internal/features/user/repository/redis"
	sqliterepo "referral-miniapp-backend/internal/features/user/repository/sqlite"
	userservice "referral-miniapp-backend/internal/features/user/service"
	"referral-miniapp-backend/internal/platform/sqlite"
)

func stores() map[string]func(t *testing.T) repository.UserRepository {
	return map[string]func(t *testing.T) repository.UserRepository{
		"redis": func(t *testing.T) repository.UserRepository {
			mr := miniredis.RunT(t)
			client := go_redis.NewClient(&go_redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return redisrepo.NewUserRepository(client)
		},
		"sqlite": func(t *testing.T) repository.UserRepository {
			client, err := sqlite.NewClient(context.Background(), ":memory:")
			require.NoError(t, err)
			repo, err := sqliterepo.NewUserRepository(context.Background(), client.GetDB())
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		},
	}
}

func TestReferralFlow(t *testing.T) {
	for name, newRepo := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			m := metrics.New()

			users := userservice.NewUserService(repo, m, userservice.Options{ReferralBonus: 2500})
			tasks := taskservice.NewTaskService(repo, m)
			payouts := payoutservice.NewPayoutService(repo, nil, m)

			owner, err := users.Resolve(ctx, userservice.ResolveInput{ID: 555, Profile: models.Profile{Username: "alice"}})
			require.NoError(t, err)
			assert.True(t, owner.Created)
			assert.Zero(t, owner.User.Points)
			assert.Empty(t, owner.User.InvitedUsers)

			for _, id := range []int64{601, 602, 603} {
				invitee, err := users.Resolve(ctx, userservice.ResolveInput{ID: id, InviterID: 555})
				require.NoError(t, err)
				assert.Equal(t, "@alice", invitee.User.InvitedBy)
			}

			// повторный вход приглашенного не начисляет бонус снова
			_, err = users.Resolve(ctx, userservice.ResolveInput{ID: 601, InviterID: 555})
			require.NoError(t, err)

			current, err := users.GetCurrent(ctx, 555)
			require.NoError(t, err)
			assert.Len(t, current.User.InvitedUsers, 3)
			assert.Equal(t, int64(7500), current.User.Points)

			claim, err := tasks.Claim(ctx, 555, taskservice.TaskInviteThreeFriends)
			require.NoError(t, err)
			assert.Equal(t, "done", claim.Status)
			assert.Equal(t, int64(7505), claim.Points)

			claim, err = tasks.Claim(ctx, 555, taskservice.TaskInviteThreeFriends)
			require.NoError(t, err)
			assert.Equal(t, "already-done", claim.Status)
			assert.Equal(t, int64(7505), claim.Points)

			accepted, err := payouts.RequestPayout(ctx, 555, "alice@upi", false)
			require.NoError(t, err)
			assert.True(t, accepted.Accepted)

			current, err = users.GetCurrent(ctx, 555)
			require.NoError(t, err)
			assert.Len(t, current.User.PayoutRequests, 1)
			assert.Equal(t, int64(7505), current.User.Points)
			assert.Equal(t, []string{taskservice.TaskInviteThreeFriends}, current.User.ClaimedTaskIDs)
		})
	}
}
