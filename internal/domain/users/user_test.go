package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleUnmarshalNormalizesTechnician(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"Ana","lastName":"Ruiz","role":"TECHNICIAN"}`), &u))
	assert.Equal(t, RoleTech, u.Role)
	assert.True(t, u.Role.Valid())
	assert.Equal(t, "Ana Ruiz", u.FullName())
}

func TestRoleHelpers(t *testing.T) {
	admin := User{Role: RoleAdmin}
	office := User{Role: RoleOffice}
	tech := User{Role: RoleTech}
	customer := User{Role: RoleCustomer}

	assert.True(t, admin.IsOffice())
	assert.True(t, office.IsTech())
	assert.True(t, tech.IsTech())
	assert.False(t, tech.IsOffice())
	assert.False(t, customer.IsTech())
	assert.False(t, NormalizeRole("janitor").Valid())
}
