package validator

import (
	"testing"
)

type bankProbe struct {
	Code  string `json:"examCode" validate:"required,exam_code"`
	Mode  string `json:"mode" validate:"omitempty,exam_mode"`
	Items []item `json:"questions" validate:"required,min=1,dive"`
}

type item struct {
	Text string `json:"text" validate:"required"`
}

func TestStructCustomRules(t *testing.T) {
	ok := bankProbe{Code: "CLF-C02", Mode: "timed", Items: []item{{Text: "q"}}}
	if fields := Struct(ok); fields != nil {
		t.Fatalf("valid struct rejected: %v", fields)
	}

	bad := bankProbe{Code: "clf-c02", Mode: "sprint", Items: []item{{}}}
	fields := Struct(bad)
	for _, key := range []string{"examCode", "mode", "questions[0].text"} {
		if _, found := fields[key]; !found {
			t.Errorf("missing error for %s in %v", key, fields)
		}
	}
	if got := fields["examCode"]; got != "examCode must look like CLF-C02" {
		t.Errorf("examCode message = %q", got)
	}
}

func TestExamCodePattern(t *testing.T) {
	for code, want := range map[string]bool{
		"CLF-C02":  true,
		"SAA-C03":  true,
		"DOP-C02":  true,
		"CLF-C2":   false,
		"CLFC02":   false,
		"clf-c02":  false,
		"CLF-C021": false,
	} {
		if got := examCodePattern.MatchString(code); got != want {
			t.Errorf("%s: got %v, want %v", code, got, want)
		}
	}
}
