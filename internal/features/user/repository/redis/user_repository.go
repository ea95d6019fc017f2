package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
)

// Пользователь хранится в нескольких ключах:
//
//	user:<id>              HASH  профиль, баланс, invited_by, присутствие
//	user:<id>:invited      LIST  хэндлы приглашенных пользователей
//	user:<id>:claimed      SET   идентификаторы полученных заданий
//	user:<id>:payment_ids  LIST  платежные идентификаторы
//	user:<id>:payouts      LIST  заявки на выплату (JSON)
//
// Все изменения, затрагивающие несколько ключей, выполняются Lua-скриптами.

var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return {0, 0}
end
local fields = {}
for i = 6, #ARGV do
  fields[#fields + 1] = ARGV[i]
end
local linked = 0
if ARGV[1] == '1' and redis.call('EXISTS', KEYS[2]) == 1 then
  linked = 1
  fields[#fields + 1] = 'invited_by'
  fields[#fields + 1] = ARGV[4]
  fields[#fields + 1] = 'invited_by_id'
  fields[#fields + 1] = ARGV[5]
  redis.call('RPUSH', KEYS[3], ARGV[2])
  redis.call('HINCRBY', KEYS[2], 'points', ARGV[3])
end
redis.call('HSET', KEYS[1], unpack(fields))
return {1, linked}
`)

var claimScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {-1, 0, 0}
end
local invites = redis.call('LLEN', KEYS[3])
local points = tonumber(redis.call('HGET', KEYS[1], 'points') or '0')
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
  return {0, points, invites}
end
if invites < tonumber(ARGV[3]) then
  return {2, points, invites}
end
redis.call('SADD', KEYS[2], ARGV[1])
points = redis.call('HINCRBY', KEYS[1], 'points', ARGV[2])
return {1, points, invites}
`)

var touchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], 'is_online', '1', 'last_seen_at', ARGV[1])
return 1
`)

var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('RPUSH', KEYS[2], ARGV[1])
`)

var payoutScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
if ARGV[2] == '1' then
  redis.call('RPUSH', KEYS[2], ARGV[3])
end
return redis.call('RPUSH', KEYS[3], ARGV[1])
`)

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{
		client: client,
	}
}

func userKey(id int64) string       { return fmt.Sprintf("user:%d", id) }
func invitedKey(id int64) string    { return fmt.Sprintf("user:%d:invited", id) }
func claimedKey(id int64) string    { return fmt.Sprintf("user:%d:claimed", id) }
func paymentIDsKey(id int64) string { return fmt.Sprintf("user:%d:payment_ids", id) }
func payoutsKey(id int64) string    { return fmt.Sprintf("user:%d:payouts", id) }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	pipe := r.client.Pipeline()
	hash := pipe.HGetAll(ctx, userKey(id))
	invited := pipe.LRange(ctx, invitedKey(id), 0, -1)
	claimed := pipe.SMembers(ctx, claimedKey(id))
	paymentIDs := pipe.LRange(ctx, paymentIDsKey(id), 0, -1)
	payouts := pipe.LRange(ctx, payoutsKey(id), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	fields := hash.Val()
	if len(fields) == 0 {
		return nil, repository.ErrNotFound
	}

	user := &models.User{
		ID:                 id,
		Username:           fields["username"],
		FirstName:          fields["first_name"],
		LastName:           fields["last_name"],
		Points:             parseInt(fields["points"]),
		InvitedBy:          fields["invited_by"],
		InvitedByID:        parseInt(fields["invited_by_id"]),
		IsOnline:           fields["is_online"] == "1",
		LastSeenAt:         parseTime(fields["last_seen_at"]),
		CreatedAt:          parseTime(fields["created_at"]),
		InvitedUsers:       invited.Val(),
		ClaimedTaskIDs:     claimed.Val(),
		PaymentIdentifiers: paymentIDs.Val(),
		PayoutRequests:     make([]models.PayoutRequest, 0, len(payouts.Val())),
	}
	// SMEMBERS не гарантирует порядок
	slices.Sort(user.ClaimedTaskIDs)

	for _, raw := range payouts.Val() {
		var req models.PayoutRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("decode payout request of user %d: %w", id, err)
		}
		user.PayoutRequests = append(user.PayoutRequests, req)
	}

	return user, nil
}

func (r *userRepository) CreateWithReferral(ctx context.Context, user *models.User, inviterID int64, bonus int64) (bool, bool, error) {
	link := "0"
	if inviterID != 0 && inviterID != user.ID {
		link = "1"
	}

	args := []interface{}{
		link,
		user.Handle(),
		bonus,
		user.InvitedBy,
		user.InvitedByID,
		"id", user.ID,
		"username", user.Username,
		"first_name", user.FirstName,
		"last_name", user.LastName,
		"points", user.Points,
		"is_online", formatBool(user.IsOnline),
		"last_seen_at", formatTime(user.LastSeenAt),
		"created_at", formatTime(user.CreatedAt),
	}
	keys := []string{userKey(user.ID), userKey(inviterID), invitedKey(inviterID)}

	res, err := createScript.Run(ctx, r.client, keys, args...).Int64Slice()
	if err != nil {
		return false, false, fmt.Errorf("create user %d: %w", user.ID, err)
	}
	if len(res) != 2 {
		return false, false, fmt.Errorf("create user %d: unexpected script reply %v", user.ID, res)
	}
	return res[0] == 1, res[1] == 1, nil
}

func (r *userRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	n, err := touchScript.Run(ctx, r.client, []string{userKey(id)}, formatTime(at)).Int64()
	if err != nil {
		return fmt.Errorf("touch user %d: %w", id, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ClaimTask(ctx context.Context, id int64, grant models.TaskGrant, _ time.Time) (models.ClaimResult, error) {
	keys := []string{userKey(id), claimedKey(id), invitedKey(id)}
	res, err := claimScript.Run(ctx, r.client, keys, grant.TaskID, grant.Reward, grant.RequiredInvites).Int64Slice()
	if err != nil {
		return models.ClaimResult{}, fmt.Errorf("claim task %s for user %d: %w", grant.TaskID, id, err)
	}
	if len(res) != 3 {
		return models.ClaimResult{}, fmt.Errorf("claim task %s for user %d: unexpected script reply %v", grant.TaskID, id, res)
	}

	result := models.ClaimResult{Points: res[1], InviteCount: int(res[2])}
	switch res[0] {
	case -1:
		return models.ClaimResult{}, repository.ErrNotFound
	case 0:
		result.Outcome = models.ClaimAlreadyDone
	case 1:
		result.Outcome = models.ClaimDone
	default:
		result.Outcome = models.ClaimNotEligible
	}
	return result, nil
}

func (r *userRepository) AppendPaymentIdentifier(ctx context.Context, id int64, paymentID string) ([]string, error) {
	if err := r.appendTo(ctx, id, paymentIDsKey(id), paymentID); err != nil {
		return nil, err
	}
	ids, err := r.client.LRange(ctx, paymentIDsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list payment identifiers of user %d: %w", id, err)
	}
	return ids, nil
}

func (r *userRepository) AppendPayoutRequest(ctx context.Context, id int64, req models.PayoutRequest, saveIdentifier bool) (int, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}
	keys := []string{userKey(id), paymentIDsKey(id), payoutsKey(id)}
	n, err := payoutScript.Run(ctx, r.client, keys, string(raw), formatBool(saveIdentifier), req.PaymentIdentifier).Int64()
	if err != nil {
		return 0, fmt.Errorf("append payout request of user %d: %w", id, err)
	}
	if n < 0 {
		return 0, repository.ErrNotFound
	}
	return int(n), nil
}

func (r *userRepository) appendTo(ctx context.Context, id int64, key, value string) error {
	n, err := appendScript.Run(ctx, r.client, []string{userKey(id), key}, value).Int64()
	if err != nil {
		return fmt.Errorf("append to %s: %w", key, err)
	}
	if n < 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *userRepository) Close() error {
	return r.client.Close()
}
