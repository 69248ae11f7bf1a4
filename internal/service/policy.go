// internal/service/policy.go
package service

import (
	"credit-ledger/internal/auth"
	"credit-ledger/internal/util"
)

// Operation enumerates the access-controlled ledger operations.
type Operation int

const (
	OpGetBalance Operation = iota
	OpAddCredit
	OpDeductCredit
	OpListUserTransactions
	OpCreateManualTransaction
	OpListAllTransactions
	OpGetTransactionByID
)

// access describes how a role may perform an operation.
type access int

const (
	deny      access = iota
	allow            // any target account
	ownerOnly        // only when the caller owns the target account
)

// Policy is the closed operation × role access table. It replaces
// scattered inline role-string comparisons with one checkable structure.
type Policy struct {
	table map[Operation]map[auth.Role]access
}

// NewPolicy builds the access table. allowUserSelfDeduct keeps the
// transitional rule that lets users deduct from their own balance until
// the payment-gateway integration takes over deductions.
func NewPolicy(allowUserSelfDeduct bool) *Policy {
	userDeduct := deny
	if allowUserSelfDeduct {
		userDeduct = ownerOnly
	}

	return &Policy{
		table: map[Operation]map[auth.Role]access{
			OpGetBalance: {
				auth.RoleAdmin: allow,
				auth.RoleUser:  ownerOnly,
			},
			OpAddCredit: {
				auth.RoleService: allow,
			},
			OpDeductCredit: {
				auth.RoleAdmin: allow,
				auth.RoleUser:  userDeduct,
			},
			OpListUserTransactions: {
				auth.RoleAdmin: allow,
				auth.RoleUser:  ownerOnly,
			},
			OpCreateManualTransaction: {
				auth.RoleAdmin: allow,
			},
			OpListAllTransactions: {
				auth.RoleAdmin: allow,
			},
			OpGetTransactionByID: {
				auth.RoleAdmin: allow,
				auth.RoleUser:  ownerOnly,
			},
		},
	}
}

// Authorize checks whether the identity may perform op against the account
// owned by ownerUserID. Operations without a target account (system-wide
// listings) pass the caller's own ID as owner.
func (p *Policy) Authorize(ident auth.Identity, op Operation, ownerUserID int64) error {
	switch p.table[op][ident.Role] {
	case allow:
		return nil
	case ownerOnly:
		if ident.UserID == ownerUserID {
			return nil
		}
	}
	return util.ErrForbidden
}
