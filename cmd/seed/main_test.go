package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassphrasePrintsBcryptHash(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"hash-passphrase", "borrar todo"}, &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("borrar todo")))
}

func TestRunRejectsBadInvocations(t *testing.T) {
	cases := map[string][]string{
		"no command":      nil,
		"unknown command": {"drop"},
		"hash no arg":     {"hash-passphrase"},
		"teardown no yes": {"teardown"},
		"seed zero count": {"seed", "-n", "0"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(args, &out))
			assert.Empty(t, out.String())
		})
	}
}
