package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Caller maps one API key (stored as its SHA-256 hex digest) to the identity
// that authenticated requests act as.
type Caller struct {
	Name      string `yaml:"name"`
	Identity  string `yaml:"identity"`
	KeySHA256 string `yaml:"key_sha256"`
}

type callersFile struct {
	Callers []Caller `yaml:"callers"`
}

// Callers is an API key lookup table keyed by key hash.
type Callers struct {
	byHash map[string]Caller
}

// LoadCallers reads and validates a callers YAML file.
func LoadCallers(path string) (*Callers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read callers file: %w", err)
	}
	return ParseCallers(data)
}

// ParseCallers parses the YAML document:
//
//	callers:
//	  - name: plant-ops
//	    identity: ST1PLANTOPS
//	    key_sha256: 9f86d0...
func ParseCallers(data []byte) (*Callers, error) {
	var f callersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse callers file: %w", err)
	}

	c := &Callers{byHash: make(map[string]Caller, len(f.Callers))}
	for i, caller := range f.Callers {
		if caller.Identity == "" {
			return nil, fmt.Errorf("caller %d (%s): identity is required", i, caller.Name)
		}
		hash := strings.ToLower(caller.KeySHA256)
		if len(hash) != sha256.Size*2 {
			return nil, fmt.Errorf("caller %d (%s): key_sha256 must be %d hex characters", i, caller.Name, sha256.Size*2)
		}
		if _, err := hex.DecodeString(hash); err != nil {
			return nil, fmt.Errorf("caller %d (%s): key_sha256: %w", i, caller.Name, err)
		}
		if _, dup := c.byHash[hash]; dup {
			return nil, fmt.Errorf("caller %d (%s): duplicate key_sha256", i, caller.Name)
		}
		caller.KeySHA256 = hash
		c.byHash[hash] = caller
	}
	return c, nil
}

// Lookup returns the caller whose key hashes to keyHash.
func (c *Callers) Lookup(keyHash string) (Caller, bool) {
	caller, ok := c.byHash[strings.ToLower(keyHash)]
	return caller, ok
}

func (c *Callers) Len() int {
	return len(c.byHash)
}

// HashKey returns the hex SHA-256 digest stored for a raw API key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
