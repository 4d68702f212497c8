package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	context := map[string]interface{}{
		"total":  120.5,
		"count":  3,
		"status": "approved",
		"vip":    true,
		"user": map[string]interface{}{
			"email": "alice@example.com",
			"tier":  "gold",
		},
	}

	testCases := []struct {
		expression string
		expect     bool
	}{
		{"total > 100", true},
		{"total <= 100", false},
		{"count == 3", true},
		{"count != 3", false},
		{"status == 'approved'", true},
		{`status == "rejected"`, false},
		{"user.tier == 'gold'", true},
		{"user.missing == null", true},
		{"vip", true},
		{"!vip", false},
		{"vip && total > 100", true},
		{"vip && total > 200", false},
		{"total > 200 || count >= 3", true},
		{"(total > 200 || count >= 3) && status == 'approved'", true},
		{"!(status == 'approved')", false},
		{"missing", false},
		{"count > 2 && count < 4", true},
		{"user.email != null", true},
	}

	for _, tc := range testCases {
		actual, err := Evaluate(tc.expression, context)
		if !assert.NoError(t, err, tc.expression) {
			continue
		}
		assert.Equal(t, tc.expect, actual, tc.expression)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	for _, expression := range []string{
		"",
		"total >",
		"total > 100)",
		"(total > 100",
		"total ~ 100",
		"status > true",
	} {
		_, err := Evaluate(expression, map[string]interface{}{"status": "a", "total": 1})
		assert.Error(t, err, expression)
	}
}

func TestParse_NoHostAccess(t *testing.T) {
	// Function-call syntax is not part of the grammar.
	_, err := Parse("exec('rm -rf /')")
	assert.Error(t, err)
}
