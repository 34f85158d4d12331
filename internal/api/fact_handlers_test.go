package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"go-infobot/internal/fact"
)

// handlerRouter mounts the fact and settings handlers without the auth
// middleware so they can be exercised directly.
func handlerRouter(t *testing.T) (*gin.Engine, Deps) {
	_, deps, _ := setupTestAPI(t)
	r := gin.New()
	r.GET("/facts/:key", GetFactHandler(deps))
	r.DELETE("/facts/:key", DeleteFactHandler(deps))
	r.POST("/facts/:key/lock", SetFactLockHandler(deps, true))
	r.POST("/facts/:key/unlock", SetFactLockHandler(deps, false))
	r.GET("/channels/:channel/settings", GetChannelSettingsHandler(deps))
	r.PUT("/channels/:channel/settings", UpdateChannelSettingsHandler(deps))
	return r, deps
}

func TestGetFact(t *testing.T) {
	r, deps := handlerRouter(t)
	if err := deps.Facts.Set("sky", "blue", "is", "alice", 0, false); err != nil {
		t.Fatalf("seeding fact: %v", err)
	}

	w := doJSON(t, r, "GET", "/facts/sky", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var f fact.Fact
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatalf("decoding fact: %v", err)
	}
	if f.Value != "blue" || f.SetBy != "alice" {
		t.Errorf("unexpected fact: %+v", f)
	}

	if w := doJSON(t, r, "GET", "/facts/nothing", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing fact, got %d", w.Code)
	}
}

func TestLockFact_PinsAgainstChatEdits(t *testing.T) {
	r, deps := handlerRouter(t)
	if err := deps.Facts.Set("sky", "blue", "is", "alice", 0, false); err != nil {
		t.Fatalf("seeding fact: %v", err)
	}

	if w := doJSON(t, r, "POST", "/facts/sky/lock", nil); w.Code != http.StatusOK {
		t.Fatalf("lock failed: %d", w.Code)
	}

	// Chat-side edits now refuse
	if err := deps.Facts.Set("sky", "green", "is", "bob", 0, false); err != fact.ErrLocked {
		t.Errorf("expected ErrLocked from chat edit, got %v", err)
	}

	// Deleting via the API refuses too
	if w := doJSON(t, r, "DELETE", "/facts/sky", nil); w.Code != http.StatusConflict {
		t.Errorf("expected 409 deleting locked fact, got %d", w.Code)
	}

	if w := doJSON(t, r, "POST", "/facts/sky/unlock", nil); w.Code != http.StatusOK {
		t.Fatalf("unlock failed: %d", w.Code)
	}
	if w := doJSON(t, r, "DELETE", "/facts/sky", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 deleting unlocked fact, got %d", w.Code)
	}
}

func TestLockFact_MissingFact(t *testing.T) {
	r, _ := handlerRouter(t)
	if w := doJSON(t, r, "POST", "/facts/nothing/lock", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestChannelSettings(t *testing.T) {
	r, _ := handlerRouter(t)

	w := doJSON(t, r, "GET", "/channels/c1/settings?community=g1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out struct {
		Learning bool `json:"learning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding settings: %v", err)
	}
	if !out.Learning {
		t.Error("learning should default to enabled")
	}

	off := false
	w = doJSON(t, r, "PUT", "/channels/c1/settings", updateSettingsRequest{CommunityID: "g1", Learning: &off})
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "GET", "/channels/c1/settings?community=g1", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding settings: %v", err)
	}
	if out.Learning {
		t.Error("learning should be disabled after update")
	}
}

func TestUpdateChannelSettings_RequiresLearningField(t *testing.T) {
	r, _ := handlerRouter(t)
	w := doJSON(t, r, "PUT", "/channels/c1/settings", updateSettingsRequest{CommunityID: "g1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
