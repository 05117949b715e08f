package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	v := New("parent-secret")
	assert.True(t, v.IsConfigured())
	assert.True(t, v.Verify("parent-secret"))
	assert.False(t, v.Verify("wrong"))
	assert.False(t, v.Verify(""))
	assert.False(t, v.Verify("parent-secret "))
}

func TestVerify_UnconfiguredRejectsEverything(t *testing.T) {
	v := New("")
	assert.False(t, v.IsConfigured())
	assert.False(t, v.Verify(""))
	assert.False(t, v.Verify("anything"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "s3cret")
	v := FromEnv()
	assert.True(t, v.Verify("s3cret"))
}
