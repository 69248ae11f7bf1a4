// internal/domain/transaction_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		input string
		want  TransactionType
		ok    bool
	}{
		{"CREDIT", TransactionTypeCredit, true},
		{"credit", TransactionTypeCredit, true},
		{"Debit", TransactionTypeDebit, true},
		{"refund", TransactionTypeRefund, true},
		{"TRANSFER", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseTransactionType(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestTransactionTypeIsManual(t *testing.T) {
	assert.True(t, TransactionTypeCredit.IsManual())
	assert.True(t, TransactionTypeRefund.IsManual())
	assert.False(t, TransactionTypeDebit.IsManual())
}
