package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"patent not found", errors.CodePatentNotFound, "Patent with ID US-12345-A1 not found"},
		{"oracle down", errors.CodeOracleUnavailable, "API request failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	ae := errors.New(errors.CodeReportNotFound, "Report not found")
	assert.Equal(t, "[RPT_001] Report not found", ae.Error())

	withDetail := ae.WithDetail("id=abc")
	assert.Equal(t, "[RPT_001] Report not found: id=abc", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	wrapped := errors.Wrap(stderrors.New("dial tcp: refused"), errors.CodeOracleUnavailable, "API request failed")
	assert.Equal(t, "[ORC_001] API request failed: dial tcp: refused", wrapped.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.CodeInternal, "ignored %d", 1))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.CodeOracleBadResponse, "bad json")
	outer := errors.Wrap(inner, errors.CodeUnknown, "single product analysis")
	assert.Equal(t, errors.CodeOracleBadResponse, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestNilSafeBuilders(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesFmtWrapping(t *testing.T) {
	base := errors.New(errors.CodeCompanyNotFound, "Company Acme not found")
	err := fmt.Errorf("handler: %w", base)

	assert.True(t, errors.IsCode(err, errors.CodeCompanyNotFound))
	assert.False(t, errors.IsCode(err, errors.CodePatentNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.CodePatentNotFound, "x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrap: %w", errors.New(errors.CodeReportNotFound, "x"))))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestIsNotFound_LooksThroughOuterAppError(t *testing.T) {
	inner := errors.New(errors.CodePatentNotFound, "missing")
	outer := errors.Wrap(inner, errors.CodeInternal, "outer")
	assert.True(t, errors.IsNotFound(outer))
}

func TestIsValidationAndUpstream(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.InvalidParam("threshold out of range")))
	assert.False(t, errors.IsValidation(errors.Internal("x")))

	assert.True(t, errors.IsUpstream(errors.New(errors.CodeOracleBadResponse, "x")))
	assert.True(t, errors.IsUpstream(errors.New(errors.CodeOracleCircuitOpen, "x")))
	assert.False(t, errors.IsUpstream(errors.New(errors.CodeReportStoreFailed, "x")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeRateLimit, errors.GetCode(errors.RateLimit("slow down")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", errors.Message(nil))
	assert.Equal(t, "plain", errors.Message(stderrors.New("plain")))
	ae := errors.Wrap(stderrors.New("cause"), errors.CodeOracleUnavailable, "API request failed")
	assert.Equal(t, "API request failed", errors.Message(ae))
	assert.Equal(t, 503, ae.HTTPStatus())
}

//Personal.AI order the ending
