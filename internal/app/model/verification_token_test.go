package model

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestVerificationToken_IdentifierFitsLongestSlot(t *testing.T) {
	s, err := schema.Parse(&VerificationToken{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := s.LookUpField("Identifier")
	require.NotNil(t, field)

	// longest purpose prefix plus an address of the maximum length
	longest := "password-reset:" + strings.Repeat("a", 320)
	assert.GreaterOrEqual(t, field.Size, len(longest))
}

func TestVerificationToken_Expired(t *testing.T) {
	now := time.Now()
	token := &VerificationToken{Expires: now}

	assert.False(t, token.Expired(now))
	assert.True(t, token.Expired(now.Add(time.Second)))
	assert.False(t, token.Expired(now.Add(-time.Second)))
}
