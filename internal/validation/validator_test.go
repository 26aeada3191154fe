// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package validation

import (
	"strings"
	"testing"
)

type coordRequest struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
	ID  int64   `validate:"required,gt=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := coordRequest{Lat: 51.697, Lon: 4.610, ID: 244012012}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructCoordinateRanges(t *testing.T) {
	tests := []struct {
		name  string
		req   coordRequest
		field string
	}{
		{"latitude too high", coordRequest{Lat: 91, Lon: 0, ID: 1}, "Lat"},
		{"latitude too low", coordRequest{Lat: -90.5, Lon: 0, ID: 1}, "Lat"},
		{"longitude too high", coordRequest{Lat: 0, Lon: 180.1, ID: 1}, "Lon"},
		{"missing id", coordRequest{Lat: 0, Lon: 0}, "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			found := false
			for _, fe := range err.Fields {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("error fields %v do not include %s", err.Fields, tt.field)
			}
		})
	}
}

func TestStructErrorMessageJoinsFields(t *testing.T) {
	req := coordRequest{Lat: 95, Lon: 200}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if !strings.Contains(err.Error(), ";") {
		t.Errorf("Error() = %q, want multiple messages joined with ';'", err.Error())
	}
}

func TestValidatorSingleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("Validator() should return the same instance")
	}
}
