package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeves/TinyMUD/internal/game"
)

func TestAttackDealsDamageAndNotifiesBothParties(t *testing.T) {
	env := newTestEnv(t)
	attackerSid, _, attackerConn := joinTestPlayer(t, env, "Brawler", "start")
	_, target, targetConn := joinTestPlayer(t, env, "Victim", "start")
	drainOutput(attackerConn)
	drainOutput(targetConn)

	dispatchAs(env, attackerSid, "/attack Victim")

	attackerMsgs := drainOutput(attackerConn)
	require.NotEmpty(t, attackerMsgs)
	assert.Contains(t, attackerMsgs[0], "You hit Victim for 5 damage")

	targetMsgs := drainOutput(targetConn)
	require.NotEmpty(t, targetMsgs)
	assert.Contains(t, targetMsgs[0], "hits you for 5 damage")

	assert.Equal(t, 5, target.Sheet.HP)
}

func TestAttackNoSuchTargetReportsError(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Lonely", "start")

	dispatchAs(env, sid, "/attack Ghost")
	msgs := drainOutput(conn)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "no such target here")
}

func TestAttackWithNoArgumentShowsUsage(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Idle", "start")

	dispatchAs(env, sid, "/attack")
	msgs := drainOutput(conn)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "usage:")
}

func TestAttackDeadAttackerIsRejected(t *testing.T) {
	env := newTestEnv(t)
	sid, attacker, conn := joinTestPlayer(t, env, "Corpse", "start")
	attacker.Sheet.IsDead = true
	_, _, targetConn := joinTestPlayer(t, env, "Bystander", "start")
	defer drainOutput(targetConn)

	dispatchAs(env, sid, "/attack Bystander")
	msgs := drainOutput(conn)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "the dead do not fight")
}

func TestAttackKillingTargetBroadcastsDeath(t *testing.T) {
	env := newTestEnv(t)
	attackerSid, _, attackerConn := joinTestPlayer(t, env, "Slayer", "start")
	_, target, targetConn := joinTestPlayer(t, env, "Frail", "start")
	target.Sheet.HP = 3
	drainOutput(attackerConn)
	drainOutput(targetConn)

	dispatchAs(env, attackerSid, "/attack Frail")

	msgs := drainOutput(attackerConn)
	found := false
	for _, m := range msgs {
		if strings.Contains(m, "Frail has died") {
			found = true
		}
	}
	assert.True(t, found, "expected a death broadcast, got %v", msgs)
	assert.True(t, target.Sheet.IsDead)
}

func TestFleeMovesPlayerToAdjacentRoom(t *testing.T) {
	env := newTestEnv(t)
	_, err := game.CreateRoom(env.World, "alley", "Alley", "A narrow alley.")
	require.NoError(t, err)
	env.World.Rooms["start"].Doors["south"] = "alley"
	sid, _, conn := joinTestPlayer(t, env, "Runner", "start")
	drainOutput(conn)

	dispatchAs(env, sid, "/flee")

	player := env.World.Players[sid]
	assert.Equal(t, game.RoomID("alley"), player.RoomID)
	msgs := drainOutput(conn)
	assert.NotEmpty(t, msgs, "expected the fled-to room's description to be sent")
}

func TestFleeWithNoAdjacentRoomsReportsError(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Trapped", "start")
	drainOutput(conn)

	dispatchAs(env, sid, "/flee")
	msgs := drainOutput(conn)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "nowhere to flee")
	assert.Equal(t, game.RoomID("start"), env.World.Players[sid].RoomID, "a failed flee must not move the player")
}

func TestFleeDeadCharacterIsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := game.CreateRoom(env.World, "alley", "Alley", "A narrow alley.")
	require.NoError(t, err)
	env.World.Rooms["start"].Doors["south"] = "alley"
	sid, user, conn := joinTestPlayer(t, env, "Corpse", "start")
	user.Sheet.IsDead = true
	drainOutput(conn)

	dispatchAs(env, sid, "/flee")
	msgs := drainOutput(conn)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "the dead cannot flee")
}
