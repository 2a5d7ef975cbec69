package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actionsSchema := compile("actions_msg.schema.json")
	errorSchema := compile("error.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "game_id":"g1",
	  "from_index":0
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "game_id":"g1",
	  "state":{
	    "game_id":"g1",
	    "phase":"item",
	    "round":0,
	    "round_cap":10,
	    "ended":false,
	    "players":[
	      {"id":"player_1","name":"Alice","balance":90,"items":[],"active":true,"is_agent":true},
	      {"id":"player_2","name":"Bob","balance":90,"items":[{"type":"shield","price":10,"used":false}],"active":true,"is_agent":true}
	    ],
	    "prize_pool":20,
	    "total_resources":200,
	    "actions":[],
	    "created_at":"2026-01-01T00:00:00Z",
	    "updated_at":"2026-01-01T00:00:00Z"
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var actions any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACTIONS",
	  "game_id":"g1",
	  "from":0,
	  "next":2,
	  "actions":[
	    {"player_id":"player_1","action_type":"buy_item","item_type":"shield","amount":10,"ts":"2026-01-01T00:00:01Z"},
	    {"player_id":"player_1","action_type":"persuade","target_player":"player_2","amount":12,"message":"help me out","result":"accepted","ts":"2026-01-01T00:00:02Z"}
	  ]
	}`), &actions)
	validate(actionsSchema, actions)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "code":"E_GAME_NOT_FOUND",
	  "message":"no such game"
	}`), &errMsg)
	validate(errorSchema, errMsg)
}
