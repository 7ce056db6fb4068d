package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutationKind(t *testing.T) {
	assert.Equal(t, "match", mutationKind("match:12"))
	assert.Equal(t, "user", mutationKind("user:3:points"))
	assert.Equal(t, "standings", mutationKind("standings"))
}
