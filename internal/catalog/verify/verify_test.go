// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gamecatalog/internal/catalog/verify"
)

/*
TestReport_HasFatal verifies a report with only downgraded violations
reports no fatal condition, while one fatal violation flips it.
*/
func TestReport_HasFatal(t *testing.T) {
	clean := verify.Report{}
	assert.False(t, clean.HasFatal())

	downgraded := verify.Report{
		Violations: []verify.Violation{
			{Invariant: "I2_title_linkage", Count: 3, Fatal: false},
		},
	}
	assert.False(t, downgraded.HasFatal())

	fatal := verify.Report{
		Violations: []verify.Violation{
			{Invariant: "I2_title_linkage", Count: 3, Fatal: false},
			{Invariant: "country_only_jurisdiction_compat", Count: 1, Fatal: true},
		},
	}
	assert.True(t, fatal.HasFatal())
}
