package llmjson

import "testing"

func TestUnmarshalBare(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := Unmarshal(`{"name":"trailrunning"}`, &v); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if v.Name != "trailrunning" {
		t.Errorf("got name %q", v.Name)
	}
}

func TestUnmarshalFenced(t *testing.T) {
	raw := "```json\n[{\"name\":\"running\"},{\"name\":\"hiking\"}]\n```"
	var v []struct {
		Name string `json:"name"`
	}
	if err := Unmarshal(raw, &v); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(v) != 2 || v[1].Name != "hiking" {
		t.Errorf("unexpected result: %+v", v)
	}
}

func TestUnmarshalFencedNoLanguage(t *testing.T) {
	raw := "```\n{\"ok\":true}\n```"
	var v struct {
		OK bool `json:"ok"`
	}
	if err := Unmarshal(raw, &v); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !v.OK {
		t.Errorf("expected ok=true")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var v map[string]any
	if err := Unmarshal("sorry, I cannot help with that", &v); err == nil {
		t.Fatalf("expected a parse error for prose reply")
	}
	if err := Unmarshal("", &v); err == nil {
		t.Fatalf("expected an error for empty reply")
	}
}

func TestStripFenceLeavesPlainText(t *testing.T) {
	if got := StripFence("  {\"a\":1}  "); got != `{"a":1}` {
		t.Errorf("got %q", got)
	}
}
