package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Standard values
	createdAt := time.Date(2025, 6, 10, 14, 30, 45, 123456789, time.UTC)
	token := EncodeToken(createdAt, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, int64(42), decodedID, "Row id should match after decode")

	// Zero time
	zeroToken := EncodeToken(time.Time{}, 0)
	decodedZeroTime, decodedZeroID, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, time.Time{}, decodedZeroTime, "Zero time should match after decode")
	assert.Equal(t, int64(0), decodedZeroID, "Zero id should match after decode")

	// Current time
	now := time.Now().UTC()
	nowToken := EncodeToken(now, 7)
	decodedNow, _, err := DecodeToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Missing separator
	noSeparator := base64.StdEncoding.EncodeToString([]byte("2025-06-10T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Bad timestamp
	badTime := base64.StdEncoding.EncodeToString([]byte("notatime|42"))
	_, _, err = DecodeToken(badTime)
	assert.Error(t, err, "Should return an error for an unparsable time")
	assert.Contains(t, err.Error(), "time parse", "Error should mention time parsing issue")

	// Bad id
	badID := base64.StdEncoding.EncodeToString([]byte("2025-06-10T14:30:45.123456789Z|notanid"))
	_, _, err = DecodeToken(badID)
	assert.Error(t, err, "Should return an error for an unparsable id")
	assert.Contains(t, err.Error(), "id parse", "Error should mention id parsing issue")
}
