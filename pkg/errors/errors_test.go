package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeInsufficientStock, http.StatusUnprocessableEntity},
		{CodeVerificationFailed, http.StatusUnprocessableEntity},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		require.Equal(t, tc.status, meta.HTTPStatus, "code %s", tc.code)
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	require.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "gateway call failed")

	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeDependency, err.Code())
	require.Equal(t, "DEPENDENCY_ERROR: gateway call failed", err.Error())
}

func TestAsExtractsTypedError(t *testing.T) {
	inner := New(CodeInsufficientStock, "only 2 left").WithDetails(map[string]any{"available": 2})
	wrapped := fmt.Errorf("checkout: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	require.Equal(t, CodeInsufficientStock, typed.Code())
	require.NotNil(t, typed.Details())

	require.Nil(t, As(fmt.Errorf("plain")))
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, fmt.Errorf("root"), "top")
	d := Dump(err)
	require.Equal(t, CodeInternal, d.Code)
	require.Len(t, d.Chain, 2)
}
