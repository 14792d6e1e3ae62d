package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("TARGET_TOKEN_LIMIT is required")
	wrapped := Wrap(base, "failed to load pipeline configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "TARGET_TOKEN_LIMIT")
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "step 2")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "step 2: boom", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ExternalServiceError("llm", fmt.Errorf("eof"))))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(Wrap(Busy("full"), "run rejected")))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(Timeout("chart run", fmt.Errorf("deadline"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("plain")))
}
