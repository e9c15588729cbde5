package news

import (
	"encoding/json"
	"testing"
)

func TestRecordTopic(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"company wins", Record{Company: "삼송전자", Ticker: "SS", Category: "tech"}, "삼송전자"},
		{"ticker next", Record{Ticker: "SS", Category: "tech"}, "SS"},
		{"category last", Record{Category: "tech"}, "tech"},
		{"uncategorized", Record{}, Uncategorized},
	}
	for _, tt := range tests {
		if got := tt.rec.Topic(); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestRecordUnmarshalCompanyAliases(t *testing.T) {
	inputs := map[string]string{
		`{"id":1,"title":"a","company_name":"진호랩"}`: "진호랩",
		`{"id":2,"title":"b","companyName":"진호랩"}`:  "진호랩",
		`{"id":3,"title":"c","company":"진호랩"}`:      "진호랩",
		`{"id":4,"title":"d"}`:                      "",
	}
	for in, want := range inputs {
		var r Record
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Company != want {
			t.Errorf("%s: expected company %q, got %q", in, want, r.Company)
		}
	}
}

func TestRecordRoundTripKeepsDisplayDate(t *testing.T) {
	in := Record{ID: 7, Title: "t", Company: "예진캐피탈", DisplayDate: "02.27"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}
