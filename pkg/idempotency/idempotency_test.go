package idempotency

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	assert.Equal(t, "", Key(r))

	r.Header.Set(Header, "  abc-123 ")
	assert.Equal(t, "abc-123", Key(r))

	r.Header.Set(Header, strings.Repeat("k", MaxKeyLength+1))
	assert.Equal(t, "", Key(r))
}
