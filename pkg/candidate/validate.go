package candidate

import (
	"fmt"
	"regexp"
	"strings"
)

// Extraction is the field set the model returns for a resume. Keys follow the
// JSON contract in the extraction prompt.
type Extraction struct {
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	Phone                string             `json:"phone"`
	CurrentCompany       string             `json:"current_company"`
	Designation          string             `json:"designation"`
	Skills               []string           `json:"skills"`
	TotalExperienceYears float64            `json:"total_experience_years"`
	Confidence           map[string]float64 `json:"confidence"`
}

// ValidationResult carries the derived status plus human-readable issues for
// the uploader.
type ValidationResult struct {
	Status            Status
	Issues            []string
	OverallConfidence float64
}

// ConfidenceThreshold is the minimum mean confidence for auto-validation.
const ConfidenceThreshold = 0.75

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	phoneJunk    = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// Validate applies the intake rules: name/e-mail/phone are mandatory; e-mail
// and phone must look well-formed; overall confidence must reach the
// threshold. Missing mandatory fields win over format problems.
func Validate(ex Extraction) ValidationResult {
	var missing, issues []string

	if strings.TrimSpace(ex.Name) == "" {
		missing = append(missing, "name is missing")
	}
	if strings.TrimSpace(ex.Email) == "" {
		missing = append(missing, "email is missing")
	} else if !emailPattern.MatchString(strings.TrimSpace(ex.Email)) {
		issues = append(issues, "email format looks invalid")
	}
	if strings.TrimSpace(ex.Phone) == "" {
		missing = append(missing, "phone is missing")
	} else if !phonePattern.MatchString(phoneJunk.Replace(strings.TrimSpace(ex.Phone))) {
		issues = append(issues, "phone format looks invalid")
	}

	overall := overallConfidence(ex.Confidence)
	if len(missing) == 0 && overall < ConfidenceThreshold {
		issues = append(issues, fmt.Sprintf("low extraction confidence (%.2f < %.2f)", overall, ConfidenceThreshold))
	}

	res := ValidationResult{OverallConfidence: overall}
	switch {
	case len(missing) > 0:
		res.Status = StatusManualEntry
		res.Issues = append(missing, issues...)
	case len(issues) > 0:
		res.Status = StatusNeedsReview
		res.Issues = issues
	default:
		res.Status = StatusValidated
	}
	return res
}

func overallConfidence(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		sum += v
	}
	return sum / float64(len(scores))
}

// NormalizeEmail lowercases and trims an e-mail for upsert matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
