package spamcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_String(t *testing.T) {
	r := Request{Msg: "spam or ham?", UserID: "123", UserName: "newbie"}
	assert.Equal(t, `msg:"spam or ham?", user:"newbie", id:123`, r.String())
}

func TestResponse_String(t *testing.T) {
	tbl := []struct {
		name     string
		resp     Response
		expected string
	}{
		{"spam", Response{Name: "classifier", Spam: true, Details: "probability 0.92"}, "classifier: spam, probability 0.92"},
		{"ham", Response{Name: "classifier", Spam: false, Details: "probability 0.03"}, "classifier: ham, probability 0.03"},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resp.String())
		})
	}
}

func TestChecksToString(t *testing.T) {
	checks := []Response{
		{Name: "stop-phrase", Spam: false, Details: "not found"},
		{Name: "classifier", Spam: true, Details: "probability 0.92"},
	}
	assert.Equal(t, "{stop-phrase: ham, not found}, {classifier: spam, probability 0.92}", ChecksToString(checks))
	assert.Equal(t, "", ChecksToString(nil))
}
