package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/docdesk/internal/domain"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(LoginRequest{Username: "alice", Password: "pw"}))

	err := Validate(LoginRequest{Username: "alice"})
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "required", domainErr.Details["Password"])

	err = Validate(UserRequest{Username: "bob", Role: domain.Role("ADMIN")})
	assert.Equal(t, "oneof", apperrors.ToDomainError(err).Details["Role"])

	require.NoError(t, Validate(UserRequest{Username: "bob", Role: domain.RoleEmployee}))
	err = Validate(UserRequest{Username: "bob", Role: domain.RoleEmployee, Department: &DepartmentIDRef{}})
	assert.Error(t, err)
}
