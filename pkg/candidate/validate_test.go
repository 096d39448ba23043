package candidate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodExtraction() Extraction {
	return Extraction{
		Name:                 "Priya Sharma",
		Email:                "priya.sharma@example.com",
		Phone:                "+91 98765 43210",
		CurrentCompany:       "Acme Corp",
		Designation:          "Senior Engineer",
		Skills:               []string{"Go", "Postgres"},
		TotalExperienceYears: 6.5,
		Confidence: map[string]float64{
			"name":  0.98,
			"email": 0.95,
			"phone": 0.90,
		},
	}
}

func TestValidateHappyPath(t *testing.T) {
	res := Validate(goodExtraction())

	require.Equal(t, StatusValidated, res.Status)
	assert.Empty(t, res.Issues)
	assert.InDelta(t, 0.9433, res.OverallConfidence, 0.001)
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Extraction)
		issue  string
	}{
		{"name", func(ex *Extraction) { ex.Name = "" }, "name is missing"},
		{"name whitespace", func(ex *Extraction) { ex.Name = "   " }, "name is missing"},
		{"email", func(ex *Extraction) { ex.Email = "" }, "email is missing"},
		{"phone", func(ex *Extraction) { ex.Phone = "" }, "phone is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := goodExtraction()
			tt.mutate(&ex)

			res := Validate(ex)

			assert.Equal(t, StatusManualEntry, res.Status)
			assert.Contains(t, res.Issues, tt.issue)
		})
	}
}

func TestValidateMissingWinsOverFormat(t *testing.T) {
	ex := goodExtraction()
	ex.Name = ""
	ex.Email = "not-an-email"

	res := Validate(ex)

	require.Equal(t, StatusManualEntry, res.Status)
	assert.Equal(t, "name is missing", res.Issues[0])
	assert.Contains(t, res.Issues, "email format looks invalid")
}

func TestValidateEmailFormat(t *testing.T) {
	for _, bad := range []string{"plainaddress", "a@b", "a b@example.com", "a@example"} {
		ex := goodExtraction()
		ex.Email = bad

		res := Validate(ex)

		assert.Equal(t, StatusNeedsReview, res.Status, "email %q", bad)
		assert.Contains(t, res.Issues, "email format looks invalid")
	}
}

func TestValidatePhoneFormat(t *testing.T) {
	// Separators are stripped before matching, so formatted numbers pass.
	for _, ok := range []string{"+91 98765 43210", "(987) 654-3210 12", "9876543210"} {
		ex := goodExtraction()
		ex.Phone = ok

		res := Validate(ex)

		assert.Equal(t, StatusValidated, res.Status, "phone %q", ok)
	}

	for _, bad := range []string{"12345", "call me maybe", "+1234567890123456"} {
		ex := goodExtraction()
		ex.Phone = bad

		res := Validate(ex)

		assert.Equal(t, StatusNeedsReview, res.Status, "phone %q", bad)
		assert.Contains(t, res.Issues, "phone format looks invalid")
	}
}

func TestValidateLowConfidence(t *testing.T) {
	ex := goodExtraction()
	ex.Confidence = map[string]float64{"name": 0.6, "email": 0.55, "phone": 0.5}

	res := Validate(ex)

	require.Equal(t, StatusNeedsReview, res.Status)
	assert.Contains(t, res.Issues, fmt.Sprintf("low extraction confidence (%.2f < %.2f)", 0.55, ConfidenceThreshold))
}

func TestValidateLowConfidenceSkippedWhenFieldsMissing(t *testing.T) {
	// Nothing to re-check until the operator fills in the blanks.
	ex := goodExtraction()
	ex.Phone = ""
	ex.Confidence = map[string]float64{"name": 0.1}

	res := Validate(ex)

	require.Equal(t, StatusManualEntry, res.Status)
	assert.Equal(t, []string{"phone is missing"}, res.Issues)
}

func TestOverallConfidence(t *testing.T) {
	assert.Zero(t, overallConfidence(nil))
	assert.Zero(t, overallConfidence(map[string]float64{}))
	assert.InDelta(t, 0.5, overallConfidence(map[string]float64{"a": 0.25, "b": 0.75}), 1e-9)

	// Out-of-range scores clamp to [0,1] before averaging.
	assert.InDelta(t, 0.5, overallConfidence(map[string]float64{"a": 7.0, "b": -3.0}), 1e-9)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "priya@example.com", NormalizeEmail("  Priya@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
