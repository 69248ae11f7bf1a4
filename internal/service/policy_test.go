// internal/service/policy_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"credit-ledger/internal/auth"
	"credit-ledger/internal/util"
)

func TestPolicyTable(t *testing.T) {
	policy := NewPolicy(true)

	admin := auth.Identity{UserID: 1, Role: auth.RoleAdmin}
	owner := auth.Identity{UserID: 7, Role: auth.RoleUser}
	other := auth.Identity{UserID: 8, Role: auth.RoleUser}
	svc := auth.Identity{UserID: 0, Role: auth.RoleService}

	cases := []struct {
		name    string
		ident   auth.Identity
		op      Operation
		owner   int64
		allowed bool
	}{
		{"AdminReadsAnyBalance", admin, OpGetBalance, 7, true},
		{"OwnerReadsOwnBalance", owner, OpGetBalance, 7, true},
		{"OtherUserForbidden", other, OpGetBalance, 7, false},
		{"ServiceCannotReadBalance", svc, OpGetBalance, 7, false},

		{"ServiceAddsCredit", svc, OpAddCredit, 7, true},
		{"AdminCannotAddCredit", admin, OpAddCredit, 7, false},
		{"UserCannotAddCredit", owner, OpAddCredit, 7, false},

		{"AdminDeducts", admin, OpDeductCredit, 7, true},
		{"OwnerSelfDeducts", owner, OpDeductCredit, 7, true},
		{"OtherUserCannotDeduct", other, OpDeductCredit, 7, false},

		{"AdminListsAll", admin, OpListAllTransactions, 1, true},
		{"UserCannotListAll", owner, OpListAllTransactions, 7, false},

		{"AdminCreatesManual", admin, OpCreateManualTransaction, 7, true},
		{"ServiceCannotCreateManual", svc, OpCreateManualTransaction, 7, false},

		{"OwnerFetchesOwnTransaction", owner, OpGetTransactionByID, 7, true},
		{"OtherUserCannotFetchTransaction", other, OpGetTransactionByID, 7, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Authorize(tc.ident, tc.op, tc.owner)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, util.ErrForbidden)
			}
		})
	}
}

func TestPolicySelfDeductFlag(t *testing.T) {
	owner := auth.Identity{UserID: 7, Role: auth.RoleUser}

	enabled := NewPolicy(true)
	assert.NoError(t, enabled.Authorize(owner, OpDeductCredit, 7))

	disabled := NewPolicy(false)
	assert.ErrorIs(t, disabled.Authorize(owner, OpDeductCredit, 7), util.ErrForbidden)

	// Admin deduction is unaffected by the flag.
	admin := auth.Identity{UserID: 1, Role: auth.RoleAdmin}
	assert.NoError(t, disabled.Authorize(admin, OpDeductCredit, 7))
}
