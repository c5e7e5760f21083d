package reply

import (
	"errors"
	"testing"
)

func TestParse_PlainArray(t *testing.T) {
	rpl, err := Parse(`[{"author":"El Chapo","body":"Órale"},{"author":"Joseph Stalin","body":"Comrade."}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rpl) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(rpl))
	}
	if rpl[0].Author != "El Chapo" || rpl[0].Body != "Órale" {
		t.Errorf("unexpected first element: %+v", rpl[0])
	}
	if rpl[1].Author != "Joseph Stalin" || rpl[1].Body != "Comrade." {
		t.Errorf("unexpected second element: %+v", rpl[1])
	}
}

func TestParse_FenceVariantsEquivalent(t *testing.T) {
	want, err := Parse(`[{"author":"Joseph Stalin","body":"Comrade."}]`)
	if err != nil {
		t.Fatalf("unexpected error on plain payload: %v", err)
	}

	variants := map[string]string{
		"fenced with tag": "```json\n[{\"author\":\"Joseph Stalin\",\"body\":\"Comrade.\"}]\n```",
		"fenced no tag":   "```\n[{\"author\":\"Joseph Stalin\",\"body\":\"Comrade.\"}]\n```",
		"whitespace":      "\n\n  [{\"author\":\"Joseph Stalin\",\"body\":\"Comrade.\"}]  \n",
	}

	for name, raw := range variants {
		got, err := Parse(raw)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if len(got) != len(want) || got[0] != want[0] {
			t.Errorf("%s: got %+v, want %+v", name, got, want)
		}
	}
}

func TestParse_ExtraFieldsIgnored(t *testing.T) {
	rpl, err := Parse(`[{"author":"El Chapo","body":"sí","mood":"smug","confidence":0.9}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rpl) != 1 || rpl[0].Author != "El Chapo" || rpl[0].Body != "sí" {
		t.Errorf("unexpected result: %+v", rpl)
	}
}

func TestParse_UnknownAuthorPassesThrough(t *testing.T) {
	rpl, err := Parse(`[{"author":"Genghis Khan","body":"I was summoned?"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rpl[0].Author != "Genghis Khan" {
		t.Errorf("expected unknown author passed through, got %q", rpl[0].Author)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"non-array JSON": `{"author":"A","body":"b"}`,
		"null literal":   `null`,
		"fenced null":    "```json\nnull\n```",
		"bare string":    `"no replies"`,
		"missing body":   `[{"author":"A"}]`,
		"missing author": `[{"body":"b"}]`,
		"truncated":      `[{"author":"A","body":"b"`,
		"empty":          ``,
		"prose":          `Sure! Here are the responses:`,
	}

	for name, raw := range cases {
		rpl, err := Parse(raw)
		if err == nil {
			t.Errorf("%s: expected error, got %+v", name, rpl)
			continue
		}
		var me *MalformedReplyError
		if !errors.As(err, &me) {
			t.Errorf("%s: expected MalformedReplyError, got %v", name, err)
		}
		if rpl != nil {
			t.Errorf("%s: expected no partial output, got %+v", name, rpl)
		}
	}
}
