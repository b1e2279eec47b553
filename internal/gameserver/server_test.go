package gameserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/auth"
	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/dice"
	"github.com/cory-johannsen/agentrpg/internal/game/encounter"
	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/game/party"
	"github.com/cory-johannsen/agentrpg/internal/game/world"
	"github.com/cory-johannsen/agentrpg/internal/gameserver"
	"github.com/cory-johannsen/agentrpg/internal/storage/memory"
)

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	issuer *auth.Issuer
}

func newHarness(t *testing.T, health func(context.Context) error) *harness {
	t.Helper()
	logger := zap.NewNop()
	src := dice.NewSeededSource(42)
	chars := memory.NewCharacterRepository()
	templates := npc.NewDefaultRegistry()
	engine := combat.NewEngine(chars, memory.NewSessionRepository(), templates, src, logger)
	gen := encounter.NewGenerator(encounter.DefaultPool(), templates, src)
	explore := exploration.NewService(chars, memory.NewExplorationRepository(), world.NewDefaultManager(), gen, engine, logger)
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	s := gameserver.NewServer(gameserver.Deps{
		Challenges:  auth.NewChallenges(auth.WithPrefix("0")),
		Issuer:      issuer,
		Characters:  chars,
		Combat:      engine,
		Exploration: explore,
		Parties:     party.NewService(memory.NewPartyRepository(), chars),
		Health:      health,
	}, logger)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, issuer: issuer}
}

type response struct {
	status int
	body   map[string]any
}

func (h *harness) do(method, path, token string, body any) response {
	h.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rdr)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&out.body))
	return out
}

// login solves a challenge and returns a bearer token.
func (h *harness) login(agent string) string {
	h.t.Helper()
	ch := h.do(http.MethodPost, "/api/agents/challenge", "", nil)
	require.Equal(h.t, http.StatusOK, ch.status)
	c := ch.body["challenge"].(map[string]any)
	nonce := auth.Solve(c["seed"].(string), c["target_prefix"].(string))

	v := h.do(http.MethodPost, "/api/agents/verify", "", map[string]string{
		"challenge_id": c["challenge_id"].(string),
		"nonce":        nonce,
		"agent_name":   agent,
	})
	require.Equal(h.t, http.StatusOK, v.status, v.body)
	sess := v.body["session"].(map[string]any)
	assert.Equal(h.t, agent, sess["agent_name"])
	assert.Equal(h.t, float64(3600), sess["expires_in"])
	return sess["token"].(string)
}

// createCharacter returns the new character id and the re-issued token.
func (h *harness) createCharacter(token, name, class string) (string, string) {
	h.t.Helper()
	r := h.do(http.MethodPost, "/api/characters", token, map[string]string{"name": name, "class": class})
	require.Equal(h.t, http.StatusCreated, r.status, r.body)
	c := r.body["character"].(map[string]any)
	return c["id"].(string), r.body["token"].(string)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	r := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ok", r.body["status"])

	down := newHarness(t, func(context.Context) error { return errors.New("db down") })
	r = down.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, r.status)
}

func TestVerify_RejectsBadProof(t *testing.T) {
	h := newHarness(t, nil)
	r := h.do(http.MethodPost, "/api/agents/verify", "", map[string]string{
		"challenge_id": "missing", "nonce": "1", "agent_name": "a",
	})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, false, r.body["success"])
	assert.Equal(t, "UNAUTHENTICATED", r.body["code"])

	r = h.do(http.MethodPost, "/api/agents/verify", "", map[string]string{"challenge_id": "x"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION", r.body["code"])
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	h := newHarness(t, nil)
	for _, path := range []string{"/api/characters", "/api/combat", "/api/explore", "/api/parties"} {
		r := h.do(http.MethodPost, path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, r.status, path)
		assert.Equal(t, "UNAUTHENTICATED", r.body["code"], path)
	}
	r := h.do(http.MethodPost, "/api/characters", "garbage", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestCharacters(t *testing.T) {
	h := newHarness(t, nil)
	token := h.login("scout")

	id, linked := h.createCharacter(token, "Aria", "mage")

	me := h.do(http.MethodGet, "/api/characters/me", linked, nil)
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, id, me.body["character"].(map[string]any)["id"])

	// The original token has no character bound and falls back to the agent lookup.
	me = h.do(http.MethodGet, "/api/characters/me", token, nil)
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, id, me.body["character"].(map[string]any)["id"])

	got := h.do(http.MethodGet, "/api/characters/"+id, "", nil)
	require.Equal(t, http.StatusOK, got.status)
	c := got.body["character"].(map[string]any)
	assert.Equal(t, "mage", c["class"])
	assert.Equal(t, float64(1), c["level"])
	assert.Equal(t, "town_plaza", c["zone"])

	list := h.do(http.MethodGet, "/api/characters", "", nil)
	assert.Equal(t, float64(1), list.body["total"])

	alias := h.do(http.MethodPost, "/api/characters", token, map[string]string{"name": "Bo", "character_class": "rogue"})
	assert.Equal(t, http.StatusCreated, alias.status)

	bad := h.do(http.MethodPost, "/api/characters", token, map[string]string{"name": "X", "class": "necromancer"})
	assert.Equal(t, http.StatusBadRequest, bad.status)
	assert.Equal(t, "VALIDATION", bad.body["code"])

	malformed := h.do(http.MethodPost, "/api/characters", token, "{not json")
	assert.Equal(t, http.StatusBadRequest, malformed.status)

	missing := h.do(http.MethodGet, "/api/characters/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "NOT_FOUND", missing.body["code"])
}

func TestCombatFlow(t *testing.T) {
	h := newHarness(t, nil)
	token := h.login("fighter")
	id, _ := h.createCharacter(token, "Brom", "warrior")

	monsters := h.do(http.MethodGet, "/api/combat/monsters", "", nil)
	require.Equal(t, http.StatusOK, monsters.status)
	assert.Len(t, monsters.body["monsters"], 5)

	empty := h.do(http.MethodPost, "/api/combat", token, map[string]any{"character_id": id, "monster_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, empty.status)
	assert.Equal(t, "VALIDATION", empty.body["code"])

	start := h.do(http.MethodPost, "/api/combat", token, map[string]any{"character_id": id, "monster_ids": []string{"slime"}})
	require.Equal(t, http.StatusCreated, start.status, start.body)
	combatID := start.body["combat_id"].(string)
	order := start.body["turn_order"].([]any)
	require.Len(t, order, 2)
	assert.Equal(t, "active", start.body["status"])

	again := h.do(http.MethodPost, "/api/combat", token, map[string]any{"character_id": id, "monster_ids": []string{"slime"}})
	assert.Equal(t, http.StatusConflict, again.status)

	rest := h.do(http.MethodPost, "/api/characters/"+id+"/rest", token, nil)
	assert.Equal(t, http.StatusConflict, rest.status)

	actor := order[0].(string)
	target := order[1].(string)
	hit := h.do(http.MethodPost, "/api/combat/"+combatID+"/attack", token, map[string]string{"actor_id": actor, "target_id": target})
	require.Equal(t, http.StatusOK, hit.status, hit.body)
	assert.GreaterOrEqual(t, hit.body["damage"].(float64), float64(1))

	if hit.body["combat_ended"] == false {
		assert.Equal(t, float64(1), hit.body["current_turn"])
		notYours := h.do(http.MethodPost, "/api/combat/"+combatID+"/attack", token, map[string]string{"actor_id": actor, "target_id": target})
		assert.Equal(t, http.StatusConflict, notYours.status)
		assert.Equal(t, "STATE_CONFLICT", notYours.body["code"])
	}

	got := h.do(http.MethodGet, "/api/combat/"+combatID, "", nil)
	require.Equal(t, http.StatusOK, got.status)
	assert.Equal(t, combatID, got.body["combat"].(map[string]any)["id"])

	missing := h.do(http.MethodGet, "/api/combat/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.status)
}

func TestExploreFlow(t *testing.T) {
	h := newHarness(t, nil)
	token := h.login("walker")
	id, _ := h.createCharacter(token, "Lyra", "ranger")

	state := h.do(http.MethodGet, "/api/explore?character_id="+id, "", nil)
	require.Equal(t, http.StatusOK, state.status, state.body)
	assert.Equal(t, "town_plaza", state.body["current_zone"])
	assert.Equal(t, false, state.body["has_active_encounter"])
	for _, z := range state.body["adjacent_zones"].([]any) {
		assert.Equal(t, "???", z.(map[string]any)["name"])
	}

	enc := h.do(http.MethodPost, "/api/explore", token, map[string]string{"character_id": id, "zone_id": "town_plaza"})
	require.Equal(t, http.StatusOK, enc.status, enc.body)
	summary := enc.body["encounter"].(map[string]any)
	assert.Equal(t, "nothing", summary["type"])
	assert.Equal(t, float64(0), summary["monster_count"])
	_, leaked := summary["monsters"]
	assert.False(t, leaked)

	unknown := h.do(http.MethodPost, "/api/explore", token, map[string]string{"character_id": id, "zone_id": "atlantis"})
	assert.Equal(t, http.StatusBadRequest, unknown.status)

	tooLow := h.do(http.MethodPost, "/api/explore", token, map[string]string{"character_id": id, "zone_id": "dragon_peak"})
	assert.Equal(t, http.StatusBadRequest, tooLow.status)

	fight := h.do(http.MethodPost, "/api/explore/fight", token, map[string]string{"character_id": id})
	assert.Equal(t, http.StatusConflict, fight.status)

	noID := h.do(http.MethodGet, "/api/explore", "", nil)
	assert.Equal(t, http.StatusBadRequest, noID.status)
}

func TestPartyFlow(t *testing.T) {
	h := newHarness(t, nil)
	token := h.login("captain")
	leader, _ := h.createCharacter(token, "Cap", "warrior")
	member, _ := h.createCharacter(token, "Mate", "cleric")

	created := h.do(http.MethodPost, "/api/parties", token, map[string]string{"name": "Crew", "leader_id": leader})
	require.Equal(t, http.StatusCreated, created.status, created.body)
	partyID := created.body["party_id"].(string)

	joined := h.do(http.MethodPost, "/api/parties/"+partyID+"/join", token, map[string]string{"character_id": member})
	require.Equal(t, http.StatusOK, joined.status, joined.body)

	dup := h.do(http.MethodPost, "/api/parties/"+partyID+"/join", token, map[string]string{"character_id": member})
	assert.Equal(t, http.StatusConflict, dup.status)

	got := h.do(http.MethodGet, "/api/parties/"+partyID, "", nil)
	require.Equal(t, http.StatusOK, got.status)
	assert.Len(t, got.body["members"], 2)

	list := h.do(http.MethodGet, "/api/parties", "", nil)
	parties := list.body["parties"].([]any)
	require.Len(t, parties, 1)
	assert.Equal(t, float64(2), parties[0].(map[string]any)["member_count"])

	start := h.do(http.MethodPost, "/api/combat", token, map[string]any{"party_id": partyID, "monster_ids": []string{"goblin"}})
	require.Equal(t, http.StatusCreated, start.status, start.body)
	assert.Len(t, start.body["turn_order"], 3)

	transfer := h.do(http.MethodPost, "/api/parties/"+partyID+"/leader", token,
		map[string]string{"character_id": leader, "new_leader_id": member})
	require.Equal(t, http.StatusOK, transfer.status, transfer.body)
	assert.Equal(t, member, transfer.body["party"].(map[string]any)["leader_id"])

	left := h.do(http.MethodPost, "/api/parties/leave", token, map[string]string{"character_id": leader})
	require.Equal(t, http.StatusOK, left.status)
	assert.Equal(t, false, left.body["disbanded"])

	disband := h.do(http.MethodPost, "/api/parties/"+partyID+"/disband", token, map[string]string{"character_id": member})
	require.Equal(t, http.StatusOK, disband.status, disband.body)

	gone := h.do(http.MethodGet, "/api/parties/"+partyID, "", nil)
	assert.Equal(t, http.StatusNotFound, gone.status)
}

func TestRestRevivesCharacter(t *testing.T) {
	h := newHarness(t, nil)
	token := h.login("healer")
	id, _ := h.createCharacter(token, "Sol", "cleric")

	r := h.do(http.MethodPost, "/api/characters/"+id+"/rest", token, nil)
	require.Equal(t, http.StatusOK, r.status, r.body)
	c := r.body["character"].(map[string]any)
	assert.Equal(t, c["max_hp"], c["hp"])
	assert.Equal(t, c["max_mp"], c["mp"])
	assert.Equal(t, "idle", c["status"])
}
