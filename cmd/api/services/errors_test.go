package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	chatErr := errPersistence(cause)

	assert.Equal(t, http.StatusInternalServerError, chatErr.StatusCode)
	assert.Equal(t, chatErr.ErrorCode, chatErr.Error())
	assert.ErrorIs(t, chatErr, cause)
}

func TestNilChatErrorHasNoMessage(t *testing.T) {
	var chatErr *ChatError
	assert.Equal(t, "", chatErr.Error())
	assert.Nil(t, chatErr.Unwrap())
}
