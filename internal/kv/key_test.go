package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"single part", NewKey("asset", "1"), "asset/1:1"},
		{"two parts", NewKey("cert", "ST2", "Pump"), "cert/3:ST2/4:Pump"},
		{"no parts", NewKey("asset-meta"), "asset-meta/"},
		{"empty part", NewKey("cert", "", "x"), "cert/0:/1:x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKeyString_SeparatorInComponentsDoesNotCollide(t *testing.T) {
	// "a-b" + "c" and "a" + "b-c" join to the same dash-separated string.
	k1 := NewKey("cert", "a-b", "c")
	k2 := NewKey("cert", "a", "b-c")
	assert.NotEqual(t, k1.String(), k2.String())

	k3 := NewKey("cert", "a/1:b", "c")
	k4 := NewKey("cert", "a", "b/1:c")
	assert.NotEqual(t, k3.String(), k4.String())
}

func TestBucketPrefix(t *testing.T) {
	assert.Equal(t, "", BucketPrefix(""))
	assert.Equal(t, "asset/", BucketPrefix("asset"))
}
