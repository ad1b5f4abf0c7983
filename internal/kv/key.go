package kv

import (
	"strconv"
	"strings"
)

// Key is a structured store key: a bucket and an ordered list of components.
// Components are length-prefixed when encoded, so a component containing a
// separator can never collide with a different split of the same text.
type Key struct {
	Bucket string
	Parts  []string
}

func NewKey(bucket string, parts ...string) Key {
	return Key{Bucket: bucket, Parts: parts}
}

// String returns the encoded form, e.g. "cert/3:abc/7:foo-bar".
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(BucketPrefix(k.Bucket))
	for i, p := range k.Parts {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// BucketPrefix returns the encoded prefix shared by every key in bucket.
func BucketPrefix(bucket string) string {
	if bucket == "" {
		return ""
	}
	return bucket + "/"
}
